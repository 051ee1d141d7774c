package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bridgehq/relay/pkg/config"
	"bridgehq/relay/pkg/providerfactory"
	"bridgehq/relay/pkg/providers"
)

var modelsFlags struct {
	provider string
	apiKey   string
	baseURL  string
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models a backend offers",
	Long: `List the models a backend currently offers, using the same provider
construction and credential resolution as the server.

Examples:
  # List self-hosted models
  relay models --provider selfhosted

  # List cloud models with an explicit key
  relay models --provider cloud --api-key sk-...`,
	RunE: listModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)

	modelsCmd.Flags().StringVarP(&modelsFlags.provider, "provider", "p", "selfhosted", "provider type (cloud, selfhosted)")
	modelsCmd.Flags().StringVar(&modelsFlags.apiKey, "api-key", "", "API key (cloud provider)")
	modelsCmd.Flags().StringVar(&modelsFlags.baseURL, "base-url", "", "backend base URL")
}

func listModels(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	provider, err := providerfactory.New(modelsFlags.provider, providers.Credentials{
		APIKey:  modelsFlags.apiKey,
		BaseURL: modelsFlags.baseURL,
	}, providerfactory.Defaults{
		CloudAPIKey:       cfg.Providers.Cloud.APIKey,
		CloudBaseURL:      cfg.Providers.Cloud.BaseURL,
		SelfHostedBaseURL: cfg.Providers.SelfHosted.BaseURL,
		Timeout:           cfg.Providers.Timeout,
	})
	if err != nil {
		return err
	}

	models, err := provider.FetchModels(cmd.Context())
	if err != nil {
		return err
	}

	for _, m := range models {
		fmt.Println(m.ID)
	}
	return nil
}
