package transport

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/esclient-go/esclient/pkg/clienterr"
)

// DecodeCloudID resolves a cloud ID of the form
// "name:base64(host[:port]$es_uuid$kb_uuid)" to the https URL of the
// cluster. The name prefix is optional.
func DecodeCloudID(cloudID string) (string, error) {
	encoded := cloudID
	if i := strings.LastIndex(cloudID, ":"); i >= 0 {
		encoded = cloudID[i+1:]
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
		if err != nil {
			return "", clienterr.WrapConfig(err, "Cloud ID is not properly formatted")
		}
	}

	parts := strings.Split(strings.TrimRight(string(decoded), "\n"), "$")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", clienterr.Configf("Cloud ID is not properly formatted")
	}

	host, port := parts[0], "443"
	if h, p, found := strings.Cut(parts[0], ":"); found {
		if n, err := strconv.Atoi(p); err != nil || n < 1 || n > 65535 {
			return "", clienterr.Configf("Cloud ID is not properly formatted")
		}
		host, port = h, p
	}

	return "https://" + parts[1] + "." + host + ":" + port, nil
}
