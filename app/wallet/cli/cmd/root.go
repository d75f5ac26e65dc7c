// Package cmd contains the wallet app commands.
package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// passwordEnv names the environment variable read when no password flag
// is provided.
const passwordEnv = "COIN_PASSWORD"

var (
	nodeURL  string
	password string
)

var rootCmd = &cobra.Command{
	Use:          "wallet",
	Short:        "Manage the wallets hosted by a coin node",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&nodeURL, "url", "u", "http://localhost:8080", "Url of the node public api.")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "w", "", "Wallet password, read from "+passwordEnv+" when empty.")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// =============================================================================

var client = http.Client{Timeout: 30 * time.Second}

// apiError is the error document the node responds with.
type apiError struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// call performs the request against the node and decodes the response
// document into out when provided.
func call(method string, path string, withPassword bool, in any, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, strings.TrimSuffix(nodeURL, "/")+"/v1"+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if withPassword {
		pwd := walletPassword()
		if pwd == "" {
			return fmt.Errorf("password required, use --password or %s", passwordEnv)
		}
		req.Header.Set("Password", pwd)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		var ae apiError
		if err := json.NewDecoder(resp.Body).Decode(&ae); err != nil || ae.Error == "" {
			return fmt.Errorf("node responded %s", resp.Status)
		}
		if len(ae.Fields) > 0 {
			return fmt.Errorf("%s: %v", ae.Error, ae.Fields)
		}
		return fmt.Errorf("%s", ae.Error)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// walletPassword returns the password flag, the environment value when the
// flag is empty.
func walletPassword() string {
	if password != "" {
		return password
	}
	return os.Getenv(passwordEnv)
}

// printJSON writes the value as indented json.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(data))
	return nil
}
