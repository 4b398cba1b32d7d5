package uplink

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	senML "github.com/farshidtz/senml/v2"
	senMLCodec "github.com/farshidtz/senml/v2/codec"
	piondtls "github.com/pion/dtls/v2"
	"github.com/plgd-dev/go-coap/v3/dtls"
	"github.com/plgd-dev/go-coap/v3/message"
	"github.com/plgd-dev/go-coap/v3/message/codes"
	"github.com/plgd-dev/go-coap/v3/message/pool"
	"go.uber.org/zap"

	"ipso-client-coap/config"
	"ipso-client-coap/lwm2m"
)

const (
	authPath    = "/auth/jwt"
	statePath   = "/state"
	messagePath = "/msg/d2c/raw"
)

// Conn is the part of a go-coap client connection the uplink uses.
type Conn interface {
	Post(ctx context.Context, path string, contentFormat message.MediaType, payload io.ReadSeeker, opts ...message.Option) (*pool.Message, error)
	Get(ctx context.Context, path string, opts ...message.Option) (*pool.Message, error)
	Close() error
}

// Client publishes drained resource changes to the cloud as SenML over
// CoAP/DTLS after authenticating with a device JWT.
type Client struct {
	conn   Conn
	cfg    config.UplinkConfig
	logger *zap.Logger
	now    func() time.Time
}

// Dial connects to cfg.Address, authenticates and returns a ready client.
func Dial(ctx context.Context, cfg config.UplinkConfig, device config.DeviceConfig, logger *zap.Logger) (*Client, error) {
	token, err := DeviceToken(device.CertificatesDir, device.ID, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	co, err := dtls.Dial(cfg.Address, &piondtls.Config{
		InsecureSkipVerify:    true,
		ConnectionIDGenerator: piondtls.OnlySendCIDGenerator(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDial, cfg.Address, err)
	}

	c := NewClient(co, cfg, logger)
	if err := c.Authenticate(ctx, token); err != nil {
		_ = co.Close()
		return nil, err
	}
	c.logger.Info("uplink connected", zap.String("address", cfg.Address), zap.String("device", device.ID))
	return c, nil
}

// NewClient wraps an established connection.
func NewClient(conn Conn, cfg config.UplinkConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{conn: conn, cfg: cfg, logger: logger, now: time.Now}
}

func (c *Client) Authenticate(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.conn.Post(ctx, authPath, message.TextPlain, strings.NewReader(token))
	if err != nil {
		return fmt.Errorf("uplink: %s: %w", authPath, err)
	}
	return checkResponse(authPath, resp, codes.Created)
}

// State fetches the device shadow.
func (c *Client) State(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.conn.Get(ctx, statePath)
	if err != nil {
		return nil, fmt.Errorf("uplink: %s: %w", statePath, err)
	}
	if err := checkResponse(statePath, resp, codes.Content); err != nil {
		return nil, err
	}
	body := resp.Body()
	if body == nil {
		return nil, nil
	}
	return io.ReadAll(body)
}

// Publish validates and encodes pack and posts it as a device message.
func (c *Client) Publish(ctx context.Context, pack senML.Pack) error {
	if err := pack.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}

	var (
		data   []byte
		format message.MediaType
		err    error
	)
	switch c.cfg.Format {
	case "json":
		data, err = senMLCodec.EncodeJSON(pack)
		format = message.AppJSON
	default:
		data, err = senMLCodec.EncodeCBOR(pack)
		format = message.AppCBOR
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	c.logger.Debug("publishing", zap.String("path", messagePath), zap.String("payload", hex.EncodeToString(data)))

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.conn.Post(ctx, messagePath, format, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("uplink: %s: %w", messagePath, err)
	}
	return checkResponse(messagePath, resp, codes.Created)
}

// Deliver publishes snapshots as one SenML pack.
func (c *Client) Deliver(ctx context.Context, snaps []lwm2m.Snapshot) error {
	pack := lwm2m.EncodePack(snaps, c.now())
	if len(pack) == 0 {
		return nil
	}
	return c.Publish(ctx, pack)
}

func (c *Client) Name() string { return "uplink" }

func (c *Client) Close() error {
	return c.conn.Close()
}

func checkResponse(path string, resp *pool.Message, expected codes.Code) error {
	if resp.Code() != expected {
		return fmt.Errorf("%w: %s: got %v, want %v", ErrUnexpectedResponse, path, resp.Code(), expected)
	}
	return nil
}
