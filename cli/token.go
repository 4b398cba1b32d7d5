package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ipso-client-coap/uplink"
)

// NewTokenCommand creates the token command.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	var deviceID string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed device JWT",
		Long: `Sign an ES256 device token with <certificates_dir>/<device id>.key,
valid for uplink.token_ttl.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := rootOpts.load()
			if err != nil {
				return err
			}
			if deviceID == "" {
				deviceID = cfg.Device.ID
			}
			token, err := uplink.DeviceToken(cfg.Device.CertificatesDir, deviceID, cfg.Uplink.TokenTTL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&deviceID, "device-id", "", "device id (defaults to device.id)")

	return cmd
}
