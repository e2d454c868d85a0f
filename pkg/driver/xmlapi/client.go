package xmlapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/netconfd/panos-driver/pkg/config"
)

// Client is the stateless request/response command channel of the device:
// every call is one HTTPS round trip against the XML API endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      *config.Creds

	// key is the session API key, either configured or generated once on
	// Connect.
	key string
}

func NewClient(ctx context.Context, cfg *config.DeviceConfig) (*Client, error) {
	tlsCfg, err := cfg.TLS.NewConfig(ctx)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: "https://" + cfg.Address + ":" + strconv.Itoa(cfg.Port) + "/api/",
		creds:   cfg.Credentials,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				TLSClientConfig: tlsCfg,
			},
		},
	}
	return c, nil
}

// Connect establishes the API session by obtaining an API key. A configured
// api-key is used as is; otherwise one is generated from the username and
// password.
func (c *Client) Connect(ctx context.Context) error {
	if c.creds != nil && c.creds.APIKey != "" {
		c.key = c.creds.APIKey
		return nil
	}
	key, err := c.Keygen(ctx)
	if err != nil {
		return err
	}
	c.key = key
	return nil
}

// Keygen requests a fresh API key for the configured user.
func (c *Client) Keygen(ctx context.Context) (string, error) {
	if c.creds == nil || c.creds.Username == "" {
		return "", fmt.Errorf("keygen requires a username and password")
	}
	params := url.Values{}
	params.Set("type", "keygen")
	params.Set("user", c.creds.Username)
	params.Set("password", c.creds.Password)

	resp, err := c.do(ctx, http.MethodPost, params, nil, "")
	if err != nil {
		return "", err
	}
	if err := resp.Err(); err != nil {
		return "", err
	}
	result := resp.Result()
	if result == nil {
		return "", fmt.Errorf("keygen response carries no result")
	}
	key := result.SelectElement("key")
	if key == nil || key.Text() == "" {
		return "", fmt.Errorf("keygen response carries no key")
	}
	return key.Text(), nil
}

// Op issues an operational or configuration command given as a structured
// XML command string. Transport failures are returned as errors; a device
// reported error status is visible on the returned Response.
func (c *Client) Op(ctx context.Context, cmd string) (*Response, error) {
	log.Debugf("xmlapi op: %s", cmd)
	params := url.Values{}
	params.Set("type", "op")
	params.Set("cmd", cmd)
	params.Set("key", c.key)
	return c.do(ctx, http.MethodGet, params, nil, "")
}

// ShowRunning retrieves the running configuration as an XML string.
func (c *Client) ShowRunning(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("type", "config")
	params.Set("action", "show")
	params.Set("key", c.key)

	resp, err := c.do(ctx, http.MethodGet, params, nil, "")
	if err != nil {
		return "", err
	}
	if err := resp.Err(); err != nil {
		return "", err
	}
	return resp.DocAsString(), nil
}

// ShowCandidate retrieves the candidate configuration as an XML string.
func (c *Client) ShowCandidate(ctx context.Context) (string, error) {
	resp, err := c.Op(ctx, "<show><config><candidate></candidate></config></show>")
	if err != nil {
		return "", err
	}
	if err := resp.Err(); err != nil {
		return "", err
	}
	return resp.DocAsString(), nil
}

// Import uploads a local file into the device's configuration import area
// and returns the device-side name it was stored under.
func (c *Client) Import(ctx context.Context, filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer f.Close()

	name := filepath.Base(filename)

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("type", "import")
	params.Set("category", "configuration")
	params.Set("key", c.key)

	resp, err := c.do(ctx, http.MethodPost, params, body, mw.FormDataContentType())
	if err != nil {
		return "", err
	}
	if err := resp.Err(); err != nil {
		return "", err
	}
	log.Debugf("imported %s to the device", name)
	return name, nil
}

func (c *Client) do(ctx context.Context, method string, params url.Values, body io.Reader, contentType string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"?"+params.Encode(), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	b, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, fmt.Errorf("api request failed with HTTP %s", httpResp.Status)
	}
	return ParseResponse(b)
}
