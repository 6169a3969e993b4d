package commands

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rkahn/rundash/internal/config"
	"github.com/rkahn/rundash/internal/store"
)

// NewTestCmd creates the test command
func NewTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test upstream configuration",
		Long:  "Check Strava credentials, the OpenWeather key, and the data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			client := &http.Client{Timeout: 10 * time.Second}

			fmt.Println("Checking data directory...")
			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return fmt.Errorf("data directory not writable: %w", err)
			}
			fmt.Printf("✓ Data directory ok: %s\n", cfg.DataDir)

			fmt.Println("\nChecking Strava configuration...")
			if !cfg.StravaConfigured() {
				fmt.Println("  Strava credentials not set (STRAVA_CLIENT_ID / STRAVA_CLIENT_SECRET)")
			} else {
				fmt.Println("✓ Strava credentials present")
				tokens := store.NewTokenStore(filepath.Join(cfg.DataDir, "tokens.json"))
				if tokens.Connected() {
					fmt.Println("✓ Strava account connected")
				} else {
					fmt.Printf("  No Strava token; connect at %s/auth/strava\n", cfg.BaseURL)
				}
			}

			fmt.Println("\nChecking OpenWeather configuration...")
			if cfg.OpenWeatherKey == "" {
				fmt.Println("  OpenWeather key not set (OPENWEATHER_API_KEY)")
			} else {
				probe := fmt.Sprintf(
					"https://api.openweathermap.org/data/3.0/onecall?lat=37.97&lon=-122.03&exclude=minutely,hourly,daily,alerts&appid=%s",
					url.QueryEscape(cfg.OpenWeatherKey),
				)
				resp, err := client.Get(probe)
				if err != nil {
					return fmt.Errorf("failed to reach OpenWeather: %w", err)
				}
				defer func() {
					_ = resp.Body.Close()
				}()
				if resp.StatusCode != http.StatusOK {
					return fmt.Errorf("OpenWeather returned status %d; check the key and One Call subscription", resp.StatusCode)
				}
				fmt.Println("✓ OpenWeather key accepted")
			}

			fmt.Println("\nChecking assistant configuration...")
			if cfg.OpenAIKey == "" {
				fmt.Println("  OpenAI key not set (OPENAI_API_KEY); assistant will be disabled")
			} else {
				fmt.Printf("✓ OpenAI key present (model %s)\n", cfg.AIModel)
			}

			fmt.Println("\n✓ Configuration test finished")
			return nil
		},
	}

	return cmd
}
