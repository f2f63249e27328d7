package main

import (
	"fmt"
	"io"
	"os"

	"hubhook/internal/server"

	"github.com/spf13/cobra"
)

var (
	signSecret     string
	signAlgo       string
	signWithHeader bool
)

var signCmd = &cobra.Command{
	Use:   "sign [FILE|-]",
	Short: "Compute the signature header for a payload",
	Long: `Compute the X-Hub-Signature (sha1) or X-Hub-Signature-256 (sha256) value
for a request body, using the configured app secret unless --secret is given.
The body is read from FILE, or from stdin when FILE is "-" or omitted.`,
	Example: `  body='{"entry":[{"id":"1"}]}'
  sig=$(echo -n "$body" | hubhook sign --secret "$APP_SECRET")
  curl -H "X-Hub-Signature: $sig" -d "$body" http://localhost:5000/facebook`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSign,
}

func init() {
	f := signCmd.Flags()
	f.StringVarP(&signSecret, "secret", "s", "", "App secret to sign with (default: configured app secret)")
	f.StringVar(&signAlgo, "algo", server.AlgoSHA1, "Signature algorithm: sha1 or sha256")
	f.BoolVar(&signWithHeader, "header", false, "Print the full header line instead of the value")
}

func runSign(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if signSecret != "" {
		cfg.AppSecret = signSecret
	}
	if cfg.AppSecret == "" {
		return fmt.Errorf("no app secret: pass --secret or set APP_SECRET")
	}

	payload, err := readPayload(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	sig, err := server.Sign(payload, cfg.AppSecret, signAlgo)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if signWithHeader {
		fmt.Fprintf(out, "%s: %s\n", server.SignatureHeaderFor(signAlgo), sig)
		return nil
	}
	fmt.Fprintln(out, sig)
	return nil
}

func readPayload(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}
	return data, nil
}
