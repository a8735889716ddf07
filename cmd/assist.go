package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"modelmind/internal/assist"
	"modelmind/internal/models"
	"modelmind/internal/provider"
	"modelmind/internal/service"

	"github.com/spf13/cobra"
)

var (
	assistCmd = &cobra.Command{
		Use:   "assist",
		Short: "Single-shot helper tools backed by one provider",
		Long: `Helper tools that send one request to the assist provider (assist.provider
in the config, or the first provider with an API key).`,
	}

	coachCmd = &cobra.Command{
		Use:   "coach <prompt>",
		Short: "Score a prompt and suggest improvements",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssist(cmd, func(a *assist.Assistant) (string, error) {
				return a.Coach(cmd.Context(), strings.Join(args, " "))
			})
		},
	}

	ethicsCmd = &cobra.Command{
		Use:   "ethics <text>",
		Short: "Check a prompt or generated text for bias and ethical concerns",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssist(cmd, func(a *assist.Assistant) (string, error) {
				return a.CheckEthics(cmd.Context(), strings.Join(args, " "))
			})
		},
	}

	interviewCmd = &cobra.Command{
		Use:   "interview",
		Short: "Practice interview questions",
		Long: `Without --answer, print a random question for the topic. With --answer,
get feedback on the answer to --question.`,
		Example: `  modelmind assist interview --topic technical
  modelmind assist interview --question "Tell me about a time you failed." --answer "..."`,
		RunE: runInterview,
	}

	interviewTopic    string
	interviewQuestion string
	interviewAnswer   string
)

func init() {
	rootCmd.AddCommand(assistCmd)
	assistCmd.AddCommand(coachCmd)
	assistCmd.AddCommand(ethicsCmd)
	assistCmd.AddCommand(interviewCmd)

	interviewCmd.Flags().StringVar(&interviewTopic, "topic", string(assist.TopicBehavioral), "Question topic: Behavioral, Technical or Situational")
	interviewCmd.Flags().StringVar(&interviewQuestion, "question", "", "Question being answered")
	interviewCmd.Flags().StringVar(&interviewAnswer, "answer", "", "Your answer")
}

// newAssistant builds the assistant on the configured assist provider.
func newAssistant() (*assist.Assistant, error) {
	cfg := configMgr.GetAssistConfig()

	spec, err := assistProvider(service.AvailableProviders(configMgr.GetCompareConfig().Providers), cfg.Provider)
	if err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid assist timeout: %w", err)
	}

	adapter, err := provider.New(spec)
	if err != nil {
		return nil, err
	}
	return assist.New(adapter, spec.Model, timeout, logger), nil
}

func assistProvider(available []models.ProviderSpec, name string) (models.ProviderSpec, error) {
	if len(available) == 0 {
		return models.ProviderSpec{}, errors.New("no provider has an API key")
	}
	if name == "" {
		return available[0], nil
	}
	selected, err := service.SelectProviders(available, []string{name})
	if err != nil {
		return models.ProviderSpec{}, err
	}
	return selected[0], nil
}

func runAssist(cmd *cobra.Command, call func(*assist.Assistant) (string, error)) error {
	asst, err := newAssistant()
	if err != nil {
		return err
	}

	out, err := call(asst)
	if errors.Is(err, assist.ErrEmptyInput) {
		fmt.Printf("⚠️  %s\n", capitalize(err.Error()))
		return err
	}
	if err != nil {
		return err
	}

	fmt.Println(out)
	return nil
}

func runInterview(cmd *cobra.Command, args []string) error {
	topic, ok := assist.ParseTopic(interviewTopic)
	if !ok {
		return fmt.Errorf("unknown topic %q", interviewTopic)
	}

	if interviewAnswer == "" {
		q, err := assist.RandomQuestion(topic, nil)
		if err != nil {
			return err
		}
		fmt.Printf("🎤 %s question:\n%s\n", topic, q)
		return nil
	}

	return runAssist(cmd, func(a *assist.Assistant) (string, error) {
		return a.InterviewFeedback(cmd.Context(), interviewQuestion, interviewAnswer)
	})
}
