// Command advice runs the structured parenting generators from a terminal
// against the configured model, and mints session tokens for local testing.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/RichardoC/parentpal/internal/auth"
	"github.com/RichardoC/parentpal/internal/config"
	"github.com/RichardoC/parentpal/internal/llm"
	"github.com/RichardoC/parentpal/internal/logging"
	"github.com/RichardoC/parentpal/internal/models"
	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code so deferred cleanup happens before exit.
func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(&app{})
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

// app carries what every subcommand shares. model may be preset in tests.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	model  llms.Model
}

func (a *app) service(ctx context.Context) (*llm.Service, error) {
	if a.model == nil {
		model, err := llm.NewModel(ctx, a.cfg)
		if err != nil {
			return nil, err
		}
		a.model = model
	}
	return llm.New(a.model, a.cfg.GenerationTimeout), nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "advice",
		Short: "Generate structured parenting guidance",
		Long: `Generate structured parenting guidance with the configured model.

Configuration is read from the same environment variables as the server
(LLM_PROVIDER, LLM_BASE_URL, LLM_MODEL, ...). Results are printed as JSON.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel, cfg.IsDevelopment())
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
	}

	root.AddCommand(
		tipsCmd(a),
		milestonesCmd(a),
		challengesCmd(a),
		routineCmd(a),
		catalogCmd(),
		tokenCmd(a),
	)
	return root
}

func tipsCmd(a *app) *cobra.Command {
	var age, topic string
	cmd := &cobra.Command{
		Use:   "tips",
		Short: "Parenting advice for an age group and topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			advice, err := svc.GenerateParentingAdvice(cmd.Context(), age, topic)
			if err != nil {
				a.logger.Error("Failed to generate advice", zap.Error(err))
				return err
			}
			return printJSON(cmd.OutOrStdout(), advice)
		},
	}
	cmd.Flags().StringVar(&age, "age", "", "age group id or label, e.g. toddler")
	cmd.Flags().StringVar(&topic, "topic", "", "topic id or label, e.g. sleep")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

func milestonesCmd(a *app) *cobra.Command {
	var age string
	cmd := &cobra.Command{
		Use:   "milestones",
		Short: "Developmental milestones for an age group",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			milestones, err := svc.GenerateDevelopmentMilestones(cmd.Context(), age)
			if err != nil {
				a.logger.Error("Failed to generate milestones", zap.Error(err))
				return err
			}
			return printJSON(cmd.OutOrStdout(), milestones)
		},
	}
	cmd.Flags().StringVar(&age, "age", "", "age group id or label")
	_ = cmd.MarkFlagRequired("age")
	return cmd
}

func challengesCmd(a *app) *cobra.Command {
	var age, topic string
	cmd := &cobra.Command{
		Use:   "challenges",
		Short: "Common challenges and solutions",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			challenges, err := svc.GenerateCommonChallenges(cmd.Context(), age, topic)
			if err != nil {
				a.logger.Error("Failed to generate challenges", zap.Error(err))
				return err
			}
			return printJSON(cmd.OutOrStdout(), challenges)
		},
	}
	cmd.Flags().StringVar(&age, "age", "", "age group id or label")
	cmd.Flags().StringVar(&topic, "topic", "", "topic id or label")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

func routineCmd(a *app) *cobra.Command {
	var age, activity string
	cmd := &cobra.Command{
		Use:   "routine",
		Short: "A step-by-step routine for an activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			routine, err := svc.GenerateRoutinePlanner(cmd.Context(), age, activity)
			if err != nil {
				a.logger.Error("Failed to generate routine", zap.Error(err))
				return err
			}
			return printJSON(cmd.OutOrStdout(), routine)
		},
	}
	cmd.Flags().StringVar(&age, "age", "", "age group id or label")
	cmd.Flags().StringVar(&activity, "activity", "", "activity, e.g. bedtime")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("activity")
	return cmd
}

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List age groups, topics and suggested prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), models.DefaultCatalog())
		},
	}
}

func tokenCmd(a *app) *cobra.Command {
	var userID, email string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a session token for a user",
		Long: `Issue a session token signed with SESSION_SECRET.

Send it as the session cookie or as "Authorization: Bearer <token>".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.RequireSessionSecret(); err != nil {
				return err
			}
			token, err := auth.NewManager(a.cfg.SessionSecret, a.cfg.SessionCookie, a.cfg.SessionTTL).Issue(userID, email)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id to embed as the subject")
	cmd.Flags().StringVar(&email, "email", "", "optional email claim")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
