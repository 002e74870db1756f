package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/blueflyio/ossa-go/events"
	"github.com/blueflyio/ossa-go/internal/config"
	"github.com/blueflyio/ossa-go/tracing"
)

func newEmitCmd() *cobra.Command {
	var (
		eventType string
		source    string
		subject   string
		dataJSON  string
		header    string
		agentID   string
		sinkURL   string
		pretty    bool
	)

	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Emit a CloudEvent",
		Long: "Builds a CloudEvent, stamps it with trace context, and delivers it to the " +
			"configured sink. Without OSSA_SINK_URL or --url the event is printed to stdout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadOrDefault()
			if source == "" {
				source = cfg.Events.Source
			}
			if sinkURL == "" {
				sinkURL = cfg.Sink.URL
			}

			var data any
			if dataJSON != "" {
				if err := sonic.Unmarshal([]byte(dataJSON), &data); err != nil {
					return fmt.Errorf("invalid --data: %w", err)
				}
			}

			var tc *tracing.TraceContext
			if header != "" {
				tc = tracing.FromHeaders(map[string]string{tracing.HeaderName: header})
			} else {
				var err error
				tc, err = tracing.New(agentID, tracing.NewInteractionID())
				if err != nil {
					return err
				}
			}

			event := events.New(eventType, source, data).WithTrace(tc)
			if subject != "" {
				event = event.WithSubject(subject)
			}
			if err := event.Validate(); err != nil {
				return err
			}

			var sink events.Sink
			if sinkURL != "" {
				sink = events.NewHTTPSink(events.HTTPSinkConfig{
					URL:               sinkURL,
					Timeout:           cfg.Sink.Timeout,
					Mode:              cfg.Sink.Mode,
					Retries:           cfg.Sink.Retries,
					RequestsPerSecond: cfg.Sink.RequestsPerSecond,
					Burst:             cfg.Sink.Burst,
					TripAfter:         cfg.Sink.TripAfter,
					Cooldown:          cfg.Sink.Cooldown,
				})
			} else {
				sink = events.NewStdoutSink(pretty)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Sink.Timeout+5*time.Second)
			defer cancel()
			if err := sink.Send(ctx, []*events.Event{event}); err != nil {
				return fmt.Errorf("deliver event: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&eventType, "type", "t", "", "Event type, e.g. com.example.task.done (required)")
	cmd.Flags().StringVar(&source, "source", "", "Event source (defaults to OSSA_EVENT_SOURCE)")
	cmd.Flags().StringVar(&subject, "subject", "", "Event subject")
	cmd.Flags().StringVarP(&dataJSON, "data", "d", "", "Event data as a JSON document")
	cmd.Flags().StringVar(&header, "baggage", "", "Baggage header value to continue an existing trace")
	cmd.Flags().StringVar(&agentID, "agent", "ossa-cli", "Agent id for a fresh trace when no baggage is given")
	cmd.Flags().StringVar(&sinkURL, "url", "", "HTTP sink endpoint (defaults to OSSA_SINK_URL)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print when writing to stdout")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}
