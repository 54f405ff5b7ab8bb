package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"hrintake/internal/application"
	"hrintake/internal/common"
	"hrintake/internal/errors"
	"hrintake/internal/server"
	"hrintake/internal/types"
)

var (
	detailOptsOutput outputFlags
	salaryOutput     outputFlags
	stepsOutput      outputFlags
	detailsTier      string
	detailsCollege   string
	salaryAppType    string
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the choices offered by the application form",
}

var detailOptionsCmd = &cobra.Command{
	Use:   "details",
	Short: "List institution details for a tier and college type",
	RunE: func(cmd *cobra.Command, args []string) error {
		tier := application.Tier(detailsTier)
		collegeType := application.CollegeType(detailsCollege)
		return runOptions(cmd, &detailOptsOutput, func() (types.DetailOptionsResult, error) {
			if !tier.Valid() {
				return types.DetailOptionsResult{}, errors.NewValidationError(errors.ErrCodeInvalidFieldValue,
					fmt.Sprintf("tier must be one of %v", application.Tiers()), nil).
					WithContext(errors.ContextField, "tier")
			}
			if !collegeType.Valid() {
				return types.DetailOptionsResult{}, errors.NewValidationError(errors.ErrCodeInvalidFieldValue,
					fmt.Sprintf("college type must be one of %v", application.CollegeTypes()), nil).
					WithContext(errors.ContextField, "collegeType")
			}
			return types.DetailOptionsResult{
				Tier:        tier,
				CollegeType: collegeType,
				Options:     application.ResolveDetailOptions(tier, collegeType),
			}, nil
		})
	},
}

var salaryOptionsCmd = &cobra.Command{
	Use:   "salary",
	Short: "List expected-salary brackets for an application type",
	RunE: func(cmd *cobra.Command, args []string) error {
		appType := application.ApplicationType(salaryAppType)
		return runOptions(cmd, &salaryOutput, func() (types.SalaryOptionsResult, error) {
			if !appType.Valid() {
				return types.SalaryOptionsResult{}, errors.NewValidationError(errors.ErrCodeInvalidFieldValue,
					fmt.Sprintf("application type must be one of %v", application.ApplicationTypes()), nil).
					WithContext(errors.ContextField, "applicationType")
			}
			return types.SalaryOptionsResult{ApplicationType: appType, Brackets: application.SalaryBrackets(appType)}, nil
		})
	},
}

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the configured form steps in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOptions(cmd, &stepsOutput, func() (types.StepsResult, error) {
			keys, err := getConfigFromContext(cmd.Context()).Wizard.StepKeys()
			if err != nil {
				return types.StepsResult{}, errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid wizard steps", err)
			}
			return server.StepsResult(keys), nil
		})
	},
}

func runOptions[T any](cmd *cobra.Command, out *outputFlags, op func() (T, error)) error {
	cmdConfig, err := out.resolve(cmd)
	if err != nil {
		return err
	}
	return common.RunCommand(cmd.Context(), getLoggerFromContext(cmd.Context()), cmdConfig,
		func(context.Context) (T, error) { return op() })
}

func init() {
	detailOptsOutput.register(detailOptionsCmd)
	detailOptionsCmd.Flags().StringVar(&detailsTier, "tier", "", "Institution tier (Tier 1 to Tier 4 or Other)")
	detailOptionsCmd.Flags().StringVar(&detailsCollege, "college-type", "", "College type, e.g. Engineering")
	_ = detailOptionsCmd.MarkFlagRequired("tier")
	_ = detailOptionsCmd.MarkFlagRequired("college-type")

	salaryOutput.register(salaryOptionsCmd)
	salaryOptionsCmd.Flags().StringVar(&salaryAppType, "application-type", "", "school, college or administration")
	_ = salaryOptionsCmd.MarkFlagRequired("application-type")

	stepsOutput.register(stepsCmd)

	optionsCmd.AddCommand(detailOptionsCmd, salaryOptionsCmd, stepsCmd)
}
