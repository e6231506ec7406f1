package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"studynotes/app/agent"
	"studynotes/app/config"
	"studynotes/app/server"
	"studynotes/index"
	"studynotes/model"
	"studynotes/store"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:           "studynotes",
		Short:         "Organize study notes against textbook indices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	root.AddCommand(serveCmd(), parseIndexCmd(), matchCmd())

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			gen, err := openGenerator(ctx, cfg)
			if err != nil {
				return err
			}
			if c, ok := gen.(interface{ Close() error }); ok {
				defer c.Close()
			}
			analyzer := agent.NewAnalyzer(gen, agent.Options{
				Attempts:   cfg.AIRetryAttempts,
				Delay:      time.Second,
				TokenLimit: cfg.NoteTokenLimit,
			})

			s := server.NewServer(cfg, st, analyzer)
			go func() {
				if err := s.Run(); err != nil {
					log.Fatal(err)
				}
			}()

			sigch := make(chan os.Signal, 1)
			signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
			<-sigch
			log.Println("Received shutdown signal, shutting down server...")
			s.Stop()
			return nil
		},
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.DBStorer, error) {
	if cfg.StoreDriver == config.StoreJSON {
		slog.Info("using json store", "dir", cfg.DataDir)
		return store.NewJSONStore(cfg.DataDir)
	}

	pool, err := store.NewPostgresStore(ctx, cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("error to connect to Postgres database: %w", err)
	}
	if err := pool.Init(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error to create tables: %w", err)
	}
	slog.Info("using postgres store", "host", cfg.PGHost, "db", cfg.PGDBName)
	return pool, nil
}

// openGenerator returns nil when AI analysis is switched off.
func openGenerator(ctx context.Context, cfg *config.Config) (model.Generator, error) {
	switch cfg.Annotator {
	case config.AnnotatorGemini:
		slog.Info("gemini configured", "model", cfg.GeminiModel, "api_key", cfg.MaskedAPIKey())
		return model.NewGemini(ctx, cfg.GoogleAPIKey, cfg.GeminiModel)
	case config.AnnotatorOllama:
		slog.Info("ollama configured", "url", cfg.LLMURL, "model", cfg.LLMModel)
		return model.NewOllama(cfg.LLMURL, cfg.LLMModel), nil
	default:
		slog.Warn("no AI model configured, notes will not be analyzed")
		return nil, nil
	}
}

func parseIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse-index <file>",
		Short: "Parse a textbook index and print its structure as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			structure, err := readIndex(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(structure)
		},
	}
}

func matchCmd() *cobra.Command {
	var indexFile string
	cmd := &cobra.Command{
		Use:   "match --index <file> <note>",
		Short: "Print the index key a note file would be filed under",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			structure, err := readIndex(indexFile)
			if err != nil {
				return err
			}
			note, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), index.Match(string(note), structure))
			return err
		},
	}
	cmd.Flags().StringVar(&indexFile, "index", "", "textbook index file")
	_ = cmd.MarkFlagRequired("index")
	return cmd
}

func readIndex(path string) (index.Structure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return index.Parse(index.DecodeText(data)), nil
}
