package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/practicelabs/interview-partner/internal/ai"
	"github.com/practicelabs/interview-partner/internal/interview"
	"github.com/practicelabs/interview-partner/internal/logger"
	"github.com/practicelabs/interview-partner/internal/report"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const exitWord = "exit"

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run a mock interview in the terminal",
	Run: func(_ *cobra.Command, _ []string) {
		practice()
	},
}

func init() {
	rootCmd.AddCommand(practiceCmd)
}

func practice() {
	_ = godotenv.Load()

	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	core, err := buildCore(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the interview core", zap.Error(err))
	}

	rolePrompt := promptui.Select{
		Label: "Choose a role",
		Items: core.templates.Roles(),
	}

	_, role, err := rolePrompt.Run()
	if err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}

	sessionID := uuid.NewString()[:8]

	envelope, err := core.agent.StartInterview(sessionID, role)
	if err != nil {
		logger.Fatal("starting the interview", zap.Error(err))
	}

	fmt.Printf("\nInterviewer: %s\n", envelope.Message)
	fmt.Printf("(answer the questions; type %q to finish)\n\n", exitWord)

	runAnswerLoop(ctx, core.agent, sessionID)

	printReport(ctx, core.store, core.aggregator, sessionID, logger)
	printSummary(core.agent, sessionID)
}

func runAnswerLoop(ctx context.Context, agent *interview.Agent, sessionID string) {
	answerPrompt := promptui.Prompt{Label: "You"}

	for {
		answer, err := answerPrompt.Run()
		if err != nil {
			// ^C / ^D ends the loop, the report still gets printed.
			return
		}

		if strings.EqualFold(strings.TrimSpace(answer), exitWord) {
			return
		}

		envelope, err := agent.HandleAnswer(ctx, sessionID, answer)
		if err != nil {
			if errors.Is(err, ai.ErrDelegateUnavailable) {
				fmt.Println("\nThe language model is unavailable right now, please repeat your answer.")
				continue
			}
			fmt.Printf("\nSomething went wrong: %v\n", err)
			return
		}

		if envelope.Type != interview.TypeEvaluation {
			fmt.Printf("\nInterviewer: %s\n\n", envelope.Message)
			continue
		}

		printScores(envelope)

		next, err := agent.AskNextQuestion(sessionID)
		if err != nil {
			fmt.Printf("\nSomething went wrong: %v\n", err)
			return
		}

		fmt.Printf("\nInterviewer: %s\n\n", next.Message)

		if next.Type == interview.TypeFinalSummary {
			return
		}
	}
}

func printScores(envelope interview.Envelope) {
	scores, err := envelope.DecodeScores()
	if err != nil {
		fmt.Printf("\n%s\n", envelope.Message)
		return
	}

	fmt.Printf("\nQuick evaluation: depth %.1f/10, communication %.1f/10, technical %.1f/10\n",
		scores.Depth, scores.Communication, scores.Technical)
}

func printReport(ctx context.Context, store interview.Store, aggregator *report.Aggregator, sessionID string, logger *zap.Logger) {
	session, err := store.Get(sessionID)
	if err != nil {
		return
	}

	pairs := report.PairsFromSession(session)
	if len(pairs) == 0 {
		return
	}

	fmt.Println("\nGenerating your report...")

	result, err := aggregator.Aggregate(ctx, session.Role, pairs)
	if err != nil {
		logger.Warn("report aggregation failed", zap.Error(err))
		return
	}

	fmt.Printf("\nOverall score: %.2f/10\n", result.OverallScore)
	fmt.Printf("  technical:       %.2f\n", result.Scores.Technical)
	fmt.Printf("  communication:   %.2f\n", result.Scores.Communication)
	fmt.Printf("  problem solving: %.2f\n", result.Scores.ProblemSolving)
	fmt.Printf("  structure:       %.2f\n", result.Scores.Structure)

	printFindings("Strengths", result.FinalSummary.TopStrengths)
	printFindings("Weaknesses", result.FinalSummary.TopWeaknesses)
	printFindings("Suggestions", result.FinalSummary.TopSuggestions)
}

func printFindings(label string, items []string) {
	if len(items) == 0 {
		return
	}

	fmt.Printf("\n%s:\n", label)
	for _, item := range items {
		fmt.Printf("  - %s\n", item)
	}
}

func printSummary(agent *interview.Agent, sessionID string) {
	summary := agent.EndInterview(sessionID)

	counts, err := summary.DecodeSummary()
	if err != nil {
		fmt.Printf("\n%s\n", summary.Message)
		return
	}

	fmt.Printf("\n%s Questions: %d, answers: %d, clarifications: %d, redirects: %d.\n",
		summary.Message, counts.QuestionsAsked, counts.AnswersGiven, counts.ConfusionCount, counts.OffTopicCount)
}
