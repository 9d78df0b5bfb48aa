package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

const defaultRPCURL = "http://127.0.0.1:5005"

// rpcClient posts JSON-RPC requests to a running daemon
type rpcClient struct {
	url  string
	http *http.Client
}

func newRPCClient(url string, timeout time.Duration) *rpcClient {
	return &rpcClient{url: url, http: &http.Client{Timeout: timeout}}
}

// Call sends one request and returns the decoded result object. A result
// whose status is "error" is returned together with a non-nil error.
func (c *rpcClient) Call(ctx context.Context, method string, params json.RawMessage) (map[string]interface{}, error) {
	req := map[string]interface{}{"method": method}
	if len(params) > 0 {
		req["params"] = []json.RawMessage{params}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("call %s: http %d: %s", method, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out struct {
		Result map[string]interface{} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("call %s: decode response: %w", method, err)
	}
	if out.Result["status"] == "error" {
		return out.Result, fmt.Errorf("%s: %v: %v", method, out.Result["error"], out.Result["error_message"])
	}
	return out.Result, nil
}

func newRPCCmd() *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "rpc <method> [params-json|-]",
		Short: "Call a JSON-RPC method on a running daemon",
		Long: `Call a JSON-RPC method on a running daemon and print the result. The
parameter object is given as JSON or read from stdin with "-".`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var params json.RawMessage
			if len(args) == 2 {
				raw, err := readArg(args[1], cmd.InOrStdin())
				if err != nil {
					return err
				}
				if !json.Valid(raw) {
					return fmt.Errorf("params are not valid JSON")
				}
				params = raw
			}

			client := newRPCClient(url, timeout)
			result, callErr := client.Call(cmd.Context(), args[0], params)
			if result != nil {
				if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			}
			return callErr
		},
	}

	cmd.Flags().StringVar(&url, "url", defaultRPCURL, "JSON-RPC endpoint of the daemon")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	return cmd
}
