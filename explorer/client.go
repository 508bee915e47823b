package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const noTransactionsMessage = "No transactions found"

type Client struct {
	config     *ExplorerConfig
	httpClient *http.Client
}

func NewClient(config *ExplorerConfig) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.RequestTimeout) * time.Second,
		},
	}
}

type tokenTxResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type tokenTxEntry struct {
	Hash      string `json:"hash"`
	From      string `json:"from"`
	To        string `json:"to"`
	Value     string `json:"value"`
	TimeStamp string `json:"timeStamp"`
}

// IncomingTransfers fetches the most recent page of token transfers touching
// the given address on the configured contract, newest first. A feed-reported
// empty result is not an error; anything else unexpected is returned to the
// caller, which treats it as an empty page.
func (client *Client) IncomingTransfers(ctx context.Context, address string, limit int) ([]TokenTransfer, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "tokentx")
	params.Set("contractaddress", client.config.TokenContract)
	params.Set("address", address)
	params.Set("page", "1")
	params.Set("offset", strconv.Itoa(limit))
	params.Set("sort", "desc")
	if client.config.ExplorerApiKey != "" {
		params.Set("apikey", client.config.ExplorerApiKey)
	}

	apiResponse := tokenTxResponse{}
	err := client.Request(ctx, params, &apiResponse)
	if err != nil {
		return nil, err
	}

	if apiResponse.Status != "1" {
		// the explorer reports "no results" as a soft error
		if strings.Contains(apiResponse.Message, noTransactionsMessage) {
			return []TokenTransfer{}, nil
		}
		return nil, fmt.Errorf("explorer error response: %s", apiResponse.Message)
	}

	entries := []tokenTxEntry{}
	if err := json.Unmarshal(apiResponse.Result, &entries); err != nil {
		return nil, fmt.Errorf("malformed explorer result: %v", err)
	}

	transfers := make([]TokenTransfer, 0, len(entries))
	for _, entry := range entries {
		rawValue, ok := new(big.Int).SetString(entry.Value, 10)
		if !ok {
			return nil, fmt.Errorf("malformed transfer value %q in tx %s", entry.Value, entry.Hash)
		}
		unixTime, err := strconv.ParseInt(entry.TimeStamp, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed transfer timestamp %q in tx %s", entry.TimeStamp, entry.Hash)
		}
		transfers = append(transfers, TokenTransfer{
			TxID:      entry.Hash,
			From:      entry.From,
			To:        entry.To,
			RawValue:  rawValue,
			Timestamp: time.Unix(unixTime, 0),
		})
	}
	return transfers, nil
}

func (client *Client) Request(ctx context.Context, params url.Values, response interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", client.config.ExplorerApiUrl, params.Encode()), nil)
	if err != nil {
		return err
	}
	resp, err := client.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Got a bad http response status code from the explorer %d for request %s", resp.StatusCode, httpReq.URL.Path)
	}
	return json.NewDecoder(resp.Body).Decode(response)
}
