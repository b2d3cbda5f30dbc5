package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"trainload/internal/store"
)

const (
	// CallbackPort is the port for the OAuth callback server
	CallbackPort = 8807
	// LoginTimeout is how long to wait for the user to complete auth
	LoginTimeout = 5 * time.Minute
)

// Login runs the browser OAuth flow against a local callback server and
// persists the resulting credentials. Returns the athlete ID on success.
func Login(ctx context.Context, cfg *oauth2.Config, db *store.DB) (int64, error) {
	state, err := generateState()
	if err != nil {
		return 0, fmt.Errorf("generating state: %w", err)
	}

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			errChan <- fmt.Errorf("state mismatch - possible CSRF attack")
			http.Error(w, "State mismatch", http.StatusBadRequest)
			return
		}

		if errMsg := r.URL.Query().Get("error"); errMsg != "" {
			errChan <- fmt.Errorf("auth error: %s", errMsg)
			http.Error(w, "Authentication failed", http.StatusBadRequest)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no code in callback")
			http.Error(w, "No authorization code", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>Connected</title></head>
<body style="font-family: system-ui; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0;">
<div style="text-align: center;">
<h1 style="color: #10B981;">Strava connected</h1>
<p>You can close this window and return to the terminal.</p>
</div>
</body>
</html>`)
		codeChan <- code
	})

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", CallbackPort))
	if err != nil {
		return 0, fmt.Errorf("starting callback server: %w", err)
	}

	server := &http.Server{Handler: mux}

	go func() {
		if err := server.Serve(listener); err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	fmt.Println()
	fmt.Println("To connect your Strava account, open this URL in your browser:")
	fmt.Println()
	fmt.Printf("  %s\n", authURL)
	fmt.Println()
	fmt.Println("Waiting for authorization...")

	var code string
	select {
	case code = <-codeChan:
		// continue below
	case err := <-errChan:
		shutdownServer(server)
		return 0, err
	case <-time.After(LoginTimeout):
		shutdownServer(server)
		return 0, fmt.Errorf("authentication timeout after %v", LoginTimeout)
	case <-ctx.Done():
		shutdownServer(server)
		return 0, ctx.Err()
	}

	shutdownServer(server)

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("exchanging code for token: %w", err)
	}

	athleteID := ExtractAthleteID(token)
	if err := db.SaveAuth(storedFromToken(athleteID, token)); err != nil {
		return 0, fmt.Errorf("persisting credentials: %w", err)
	}

	return athleteID, nil
}

// generateState creates a random state string for CSRF protection
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// shutdownServer gracefully shuts down the HTTP server
func shutdownServer(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}
