package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/blueflyio/ossa-go/tracing"
)

func newContextCmd() *cobra.Command {
	contextCmd := &cobra.Command{
		Use:   "context",
		Short: "Create and parse trace context",
	}
	contextCmd.AddCommand(newContextNewCmd())
	contextCmd.AddCommand(newContextParseCmd())
	return contextCmd
}

func newContextNewCmd() *cobra.Command {
	var (
		agentID       string
		interactionID string
		workflowID    string
		tenantID      string
		meta          []string
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a fresh trace context",
		Long:  "Creates a root trace context for an agent and prints its propagation header.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactionID == "" {
				interactionID = tracing.NewInteractionID()
			}

			opts := []tracing.Option{}
			if workflowID != "" {
				opts = append(opts, tracing.WithWorkflow(workflowID))
			}
			if tenantID != "" {
				opts = append(opts, tracing.WithTenant(tenantID))
			}
			for _, kv := range meta {
				key, value, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("invalid --meta %q, want key=value", kv)
				}
				opts = append(opts, tracing.WithMeta(key, value))
			}

			tc, err := tracing.New(agentID, interactionID, opts...)
			if err != nil {
				return err
			}
			return printContext(tc, asJSON)
		},
	}

	cmd.Flags().StringVar(&agentID, "agent", "", "Agent identifier (required)")
	cmd.Flags().StringVar(&interactionID, "interaction", "", "Interaction identifier (generated when empty)")
	cmd.Flags().StringVar(&workflowID, "workflow", "", "Workflow identifier")
	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant identifier")
	cmd.Flags().StringArrayVar(&meta, "meta", nil, "Custom metadata as key=value (repeatable)")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("agent")

	return cmd
}

func newContextParseCmd() *cobra.Command {
	var (
		header string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "parse [header]",
		Short: "Parse a baggage header",
		Long: "Parses a W3C baggage header value and prints the trace context it carries. " +
			"The value is taken from the argument, the --header flag, or stdin.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := header
			if len(args) == 1 {
				value = args[0]
			}
			if value == "" {
				scanner := bufio.NewScanner(os.Stdin)
				if scanner.Scan() {
					value = strings.TrimSpace(scanner.Text())
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			}

			tc := tracing.FromHeaders(map[string]string{tracing.HeaderName: value})
			return printContext(tc, asJSON)
		},
	}

	cmd.Flags().StringVar(&header, "header", "", "Baggage header value")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")

	return cmd
}

func printContext(tc *tracing.TraceContext, asJSON bool) error {
	if asJSON {
		out := tc.ToMap()
		out["headers"] = tc.Headers
		data, err := sonic.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	c := tc.Correlation
	fmt.Printf("Trace ID:       %s\n", c.TraceID)
	fmt.Printf("Span ID:        %s\n", c.SpanID)
	fmt.Printf("Correlation ID: %s\n", c.CorrelationID)
	if c.ParentSpanID != "" {
		fmt.Printf("Parent Span:    %s\n", c.ParentSpanID)
	}
	if c.AgentID != "" {
		fmt.Printf("Agent:          %s\n", c.AgentID)
	}
	if c.InteractionID != "" {
		fmt.Printf("Interaction:    %s\n", c.InteractionID)
	}
	if c.WorkflowID != "" {
		fmt.Printf("Workflow:       %s\n", c.WorkflowID)
	}
	if c.TenantID != "" {
		fmt.Printf("Tenant:         %s\n", c.TenantID)
	}
	for key, value := range c.Metadata {
		fmt.Printf("Meta:           %s=%s\n", key, value)
	}
	fmt.Printf("Header:         %s: %s\n", tracing.HeaderName, tc.Headers[tracing.HeaderName])
	return nil
}
