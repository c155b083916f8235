package linode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/0xfelix/linode-dns01-hook/pkg/config"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	applicationJSON     = "application/json"
	bearerPrefix        = "Bearer " //#nosec G101
	requestFailedFmt    = "%s request failed with status code %d"
)

// Client talks to the Linode DNS Manager API. It is never mutated after
// construction and may be shared between goroutines.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		client: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
	}
}

func (c *Client) Domains(ctx context.Context) ([]Domain, error) {
	return getAll[Domain](ctx, c, "/domains")
}

func (c *Client) Records(ctx context.Context, domainID int) ([]Record, error) {
	return getAll[Record](ctx, c, "/domains/"+strconv.Itoa(domainID)+"/records")
}

// CreateRecord creates record in the domain and returns the id assigned by Linode.
func (c *Client) CreateRecord(ctx context.Context, domainID int, record *Record) (int, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return 0, err
	}

	res, err := c.request(ctx, http.MethodPost, "/domains/"+strconv.Itoa(domainID)+"/records", body)
	if err != nil {
		return 0, err
	}

	created := Record{}
	if err := json.Unmarshal(res, &created); err != nil {
		return 0, fmt.Errorf("failed to decode created record: %w", err)
	}
	if created.ID == 0 {
		return 0, errors.New("created record has no id")
	}

	return created.ID, nil
}

func (c *Client) DeleteRecord(ctx context.Context, domainID, recordID int) error {
	_, err := c.request(ctx, http.MethodDelete,
		"/domains/"+strconv.Itoa(domainID)+"/records/"+strconv.Itoa(recordID), nil)
	return err
}

func getAll[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		res, err := c.request(ctx, http.MethodGet, path+"?"+url.Values{"page": {strconv.Itoa(page)}}.Encode(), nil)
		if err != nil {
			return nil, err
		}

		p := Page[T]{}
		if err := json.Unmarshal(res, &p); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		all = append(all, p.Data...)

		if p.Page >= p.Pages {
			return all, nil
		}
	}
}

func (c *Client) request(ctx context.Context, method, path string, body []byte) (resBody []byte, err error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Add(headerContentType, applicationJSON)
	}
	req.Header.Add(headerAuthorization, bearerPrefix+c.token)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, res.Body.Close())
	}()

	resBody, err = io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{Method: method, StatusCode: res.StatusCode}
		e := ErrorResponse{}
		if json.Unmarshal(resBody, &e) == nil {
			apiErr.Reasons = e.Errors
		}
		return nil, apiErr
	}

	return resBody, nil
}
