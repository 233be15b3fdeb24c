package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mandalart/internal/model"
)

func newRequestDeleteCmd(app *App) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "request-delete <id>",
		Short: "Ask the admin to remove a mandalart",
		Example: strings.TrimSpace(`
mandalart request-delete <id> --reason "Contains my full name"
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()

			req, err := e.svc.RequestDelete(cmd.Context(), args[0], reason)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   req,
				"_hints": []string{"mandalart admin requests"},
			})
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Why the mandalart should be removed")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

// newAdminCmd moderates delete requests. Access to the data directory is the
// credential here; the web admin pages use the admin password instead.
func newAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Moderate delete requests",
	}

	var status string
	requestsCmd := &cobra.Command{
		Use:   "requests",
		Short: "List delete requests (pending by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := model.RequestStatus(strings.TrimSpace(status))
			if filter == "all" {
				filter = ""
			}
			if filter != "" && !filter.Valid() {
				return writeErr(cmd, fmt.Errorf("invalid --status %q (expected pending|approved|rejected|all)", status))
			}

			e, err := openEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()

			reqs, err := e.st.ListDeleteRequests(cmd.Context(), filter)
			if err != nil {
				return writeErr(cmd, err)
			}
			if reqs == nil {
				reqs = []model.DeleteRequestView{}
			}
			hints := []string{}
			for _, r := range reqs {
				if r.Status == model.RequestPending {
					hints = append(hints, "mandalart admin approve "+r.ID, "mandalart admin reject "+r.ID)
					break
				}
			}
			return writeOut(cmd, app, map[string]any{"data": reqs, "_hints": hints})
		},
	}
	requestsCmd.Flags().StringVar(&status, "status", string(model.RequestPending), "Filter by status (pending|approved|rejected|all)")

	approveCmd := &cobra.Command{
		Use:   "approve <request-id>",
		Short: "Approve a delete request and delete the mandalart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModeration(cmd, app, args[0], func(e *env) func(context.Context, string) (model.DeleteRequest, error) {
				return e.svc.ApproveDeleteRequest
			})
		},
	}

	rejectCmd := &cobra.Command{
		Use:   "reject <request-id>",
		Short: "Reject a delete request and keep the mandalart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModeration(cmd, app, args[0], func(e *env) func(context.Context, string) (model.DeleteRequest, error) {
				return e.svc.RejectDeleteRequest
			})
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Count mandalarts and delete requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()
			ctx := cmd.Context()

			total, err := e.st.CountMandalarts(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			byStatus, err := e.st.CountDeleteRequests(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"mandalarts": total,
					"delete_requests": map[string]int{
						string(model.RequestPending):  byStatus[model.RequestPending],
						string(model.RequestApproved): byStatus[model.RequestApproved],
						string(model.RequestRejected): byStatus[model.RequestRejected],
					},
				},
			})
		},
	}

	cmd.AddCommand(requestsCmd)
	cmd.AddCommand(approveCmd)
	cmd.AddCommand(rejectCmd)
	cmd.AddCommand(statsCmd)
	return cmd
}

func runModeration(cmd *cobra.Command, app *App, requestID string, pick func(*env) func(context.Context, string) (model.DeleteRequest, error)) error {
	e, err := openEnv(cmd, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer e.Close()

	req, err := pick(e)(cmd.Context(), requestID)
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, map[string]any{
		"data":   req,
		"_hints": []string{"mandalart admin requests"},
	})
}
