// ABOUTME: Google auth CLI commands
// ABOUTME: Handles the OAuth browser flow and token storage
package cli

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"

	"golang.org/x/oauth2"

	"github.com/harperreed/punchcard/auth"
)

// AuthInitCommand runs the OAuth flow and saves the calendar token.
func AuthInitCommand(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	_ = fs.Parse(args)

	ctx := context.Background()

	config, err := auth.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to get OAuth config: %w", err)
	}

	// Start local server for OAuth callback
	callbackChan := make(chan *oauth2.Token)
	errChan := make(chan error)

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no authorization code received")
			return
		}

		token, err := config.Exchange(ctx, code)
		if err != nil {
			errChan <- fmt.Errorf("failed to exchange code: %w", err)
			return
		}

		callbackChan <- token
		_, _ = fmt.Fprintf(w, "Authorization successful! You can close this window.")
	})

	server := &http.Server{Addr: ":8080", Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Generate auth URL
	authURL := config.AuthCodeURL("state", oauth2.AccessTypeOffline)

	fmt.Println("Opening browser for Google OAuth...")
	fmt.Printf("\nIf browser doesn't open, visit this URL:\n%s\n\n", authURL)

	_ = openBrowser(authURL)

	// Wait for callback or error
	select {
	case token := <-callbackChan:
		_ = server.Shutdown(ctx)

		if err := auth.SaveToken(token); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}

		fmt.Printf("\n✓ Authenticated successfully\n")
		fmt.Printf("✓ Tokens saved to %s\n\n", auth.TokenPath())
		fmt.Println("Ready to go! Run 'punchcard report generate' to build a timesheet.")

		return nil

	case err := <-errChan:
		_ = server.Shutdown(ctx)
		return fmt.Errorf("OAuth flow failed: %w", err)
	}
}

func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	return exec.Command(cmd, args...).Start()
}
