package lwm2m

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	senML "github.com/farshidtz/senml/v2"
)

// EncodePack builds a SenML pack from drained snapshots. Records share a base
// name per object instance ("3303/0/") and are named by resource id, or
// "<resource>/<resource instance>" for multi-instance resources. The base
// time is carried on the first record in milliseconds. Empty strings and
// opaque values have no SenML representation and are skipped.
func EncodePack(snaps []Snapshot, t time.Time) senML.Pack {
	pack := make(senML.Pack, 0, len(snaps))
	base := ""

	for _, s := range snaps {
		rec := senML.Record{Name: strconv.Itoa(int(s.Path.Resource))}
		if s.Multiple {
			rec.Name = fmt.Sprintf("%d/%d", s.Path.Resource, s.ResourceInstance)
		}

		switch s.Value.Type() {
		case TypeFloat, TypeInteger:
			v := s.Value.Float()
			rec.Value = &v
		case TypeBoolean:
			b := s.Value.Bool()
			rec.BoolValue = &b
		case TypeString:
			if s.Value.Len() == 0 {
				continue
			}
			rec.StringValue = s.Value.String()
		case TypeOpaque:
			if s.Value.Len() == 0 {
				continue
			}
			rec.DataValue = base64.RawURLEncoding.EncodeToString(s.Value.Bytes())
		default:
			continue
		}

		if len(pack) == 0 {
			rec.BaseTime = float64(t.UnixMilli())
		}
		if name := fmt.Sprintf("%d/%d/", s.Path.Object, s.Path.Instance); name != base {
			rec.BaseName = name
			base = name
		}
		pack = append(pack, rec)
	}
	return pack
}
