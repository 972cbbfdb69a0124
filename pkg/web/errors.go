package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/panelkit/panelkit/pkg/canvas"
	"github.com/panelkit/panelkit/pkg/configsvc"
	"github.com/panelkit/panelkit/pkg/dataflow"
	"github.com/panelkit/panelkit/pkg/persistence"
	"github.com/panelkit/panelkit/pkg/services"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		return badRequest(c, err.Error())

	case persistence.IsDashboardNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("dashboard_not_found").
			WithDetail("dashboard not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case persistence.IsConfigNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("configuration_not_found").
			WithDetail("configuration not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	default:
		return internalError(c, err)
	}
}

// handleActionError maps dispatch failures to problem responses, keeping the
// field-level detail of schema violations for form highlighting.
func handleActionError(c fiber.Ctx, err error) error {
	switch {
	case dataflow.IsInvalidAction(err):
		return badRequest(c, err.Error())

	case configsvc.IsSchemaValidationError(err):
		problem := problems.NewStatusProblem(422).
			WithInstance(c.Path()).
			WithType("schema_validation_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusUnprocessableEntity).JSON(problem)

	case canvas.IsDuplicateNodeID(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("duplicate_node_id").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case canvas.IsNodeNotFound(err):
		return notFound(c, "node not found")

	default:
		return internalError(c, err)
	}
}
