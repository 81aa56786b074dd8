package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/scheme-navigator/internal/profile"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check eligibility for a profile given by flags",
	Run: func(cmd *cobra.Command, _ []string) {
		check(cmd)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Int("age", -1, "age in years")
	checkCmd.Flags().String("state", "", "state of residence")
	checkCmd.Flags().String("education", "", "education level (below_10th, 10th_pass, 12th_pass, graduate, postgraduate)")
	checkCmd.Flags().String("income", "", "annual income range (below_1lakh, 1-3lakh, 3-5lakh, 5-8lakh, above_8lakh)")
	checkCmd.Flags().String("category", "", "social category (general, obc, sc, st)")
	checkCmd.Flags().String("gender", "", "gender (male, female, other)")
	checkCmd.Flags().String("occupation", "", "occupation (student, farmer, self_employed, unemployed, salaried, other)")
}

func check(cmd *cobra.Command) {
	ctx := context.Background()

	a, err := newApplication(ctx)
	if err != nil {
		log.Fatalf("starting: %s", err)
	}

	flags := cmd.Flags()
	var p profile.Profile
	p.Age = optionalInt(cmd, "age")
	p.Region, _ = flags.GetString("state")
	education, _ := flags.GetString("education")
	income, _ := flags.GetString("income")
	category, _ := flags.GetString("category")
	gender, _ := flags.GetString("gender")
	occupation, _ := flags.GetString("occupation")
	p.Education = profile.Education(strings.ToLower(education))
	p.Income = profile.Income(strings.ToLower(income))
	p.Category = profile.Category(strings.ToLower(category))
	p.Gender = profile.Gender(strings.ToLower(gender))
	p.Occupation = profile.Occupation(strings.ToLower(occupation))

	report, err := a.service.CheckEligibility(p)
	if err != nil {
		a.logger.Fatal("checking eligibility", zap.Error(err))
	}

	if report.TotalEligible == 0 {
		fmt.Println("No eligible schemes found for this profile.")
		return
	}

	fmt.Printf("Eligible for %d scheme(s):\n\n", report.TotalEligible)
	for _, r := range report.Results {
		fmt.Printf("✅ %s [%s] (confidence %.2f)\n%s\n\n", r.Entry.Name, r.Entry.Category(), r.Confidence, r.Explanation)
	}
}
