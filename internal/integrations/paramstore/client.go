package paramstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// maxNamesPerCall is the GetParameters batch limit enforced by SSM.
const maxNamesPerCall = 10

// ssmAPI is the minimal AWS SSM interface required by Client.
// *ssm.Client from aws-sdk-go-v2 satisfies this interface.
type ssmAPI interface {
	GetParameters(ctx context.Context, in *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
}

// tokenPayload is the expected JSON shape stored in SSM for a provider token.
type tokenPayload struct {
	Token string `json:"token"`
}

// Client resolves provider credentials stored as SecureString parameters
// named "<prefix>/<provider key>-token".
type Client struct {
	api    ssmAPI
	prefix string
}

func New(api ssmAPI, prefix string) (*Client, error) {
	if api == nil {
		return nil, errors.New("paramstore: api must not be nil")
	}
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return nil, errors.New("paramstore: parameter prefix must not be empty")
	}
	return &Client{api: api, prefix: prefix}, nil
}

func (c *Client) ParameterName(key string) string {
	return c.prefix + "/" + key + "-token"
}

// Credentials looks up a token for each provider key. Keys whose parameter
// does not exist are left out of the result; the provider simply stays
// disabled.
func (c *Client) Credentials(ctx context.Context, keys []string) (map[string]string, error) {
	if c.api == nil {
		return nil, errors.New("paramstore: client not initialized")
	}

	byName := make(map[string]string, len(keys))
	var names []string
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		name := c.ParameterName(k)
		if _, seen := byName[name]; seen {
			continue
		}
		byName[name] = k
		names = append(names, name)
	}

	out := make(map[string]string, len(names))
	for start := 0; start < len(names); start += maxNamesPerCall {
		end := min(start+maxNamesPerCall, len(names))
		res, err := c.api.GetParameters(ctx, &ssm.GetParametersInput{
			Names:          names[start:end],
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			return nil, fmt.Errorf("paramstore: get parameters: %w", err)
		}
		if res == nil {
			return nil, errors.New("paramstore: empty get parameters response")
		}
		for _, p := range res.Parameters {
			if p.Name == nil || p.Value == nil {
				continue
			}
			key, ok := byName[*p.Name]
			if !ok {
				continue
			}
			token, err := parseToken(*p.Value)
			if err != nil {
				return nil, fmt.Errorf("paramstore: parameter %q: %w", *p.Name, err)
			}
			out[key] = token
		}
	}
	return out, nil
}

func parseToken(raw string) (string, error) {
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("unmarshal token value as JSON: %w", err)
	}
	token := strings.TrimSpace(tp.Token)
	if token == "" {
		return "", errors.New("API token is empty")
	}
	return token, nil
}
