// Package catalog publishes finalized schemas to a catalog service. The
// engine defines the shape of what is stored, not how the catalog
// versions or keys it.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/fieldprint/fieldprint/infer"
)

type Client struct {
	APIKey string
	Server string
}

var (
	ErrUnexpectedResponse = errors.New("unexpected response code")
)

func NewClient(apikey, server string) (*Client, error) {
	client := &Client{
		APIKey: apikey,
		Server: server,
	}
	return client, nil
}

// SchemaUpdate is one published inference result: the raw inferred schema
// with its counts, the rendered document, and the stats of the run.
type SchemaUpdate struct {
	SchemaID string                `json:"schemaID"`
	GroupID  string                `json:"groupID,omitempty"`
	Schema   *infer.InferredSchema `json:"schema"`
	Document *openapi3.Schema      `json:"document,omitempty"`
	Stats    infer.Stats           `json:"stats"`
}

func (c *Client) Publish(ctx context.Context, args SchemaUpdate) error {
	u := c.formatURL("/api/v1/schemas")

	bs, err := json.Marshal(&args)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(bs))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))

	client := http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return ErrUnexpectedResponse
	}

	return nil
}

func (c *Client) formatURL(path string) string {
	return fmt.Sprintf("%s%s", c.Server, path)
}
