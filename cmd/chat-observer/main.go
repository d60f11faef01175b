// chat-observer tails the chat stream events a chat-server broadcasts over
// NATS and logs them. Run it next to a server started with NATS_URL set.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ditto-assistant/ai/internal/eventbus"
	"github.com/ditto-assistant/ai/internal/events"
)

const queue = "chat-observer"

func main() {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	bus, err := eventbus.NewDistributedEventBus(natsURL)
	if err != nil {
		log.Fatalf("Failed to connect event bus: %v", err)
	}
	defer bus.Close()

	subscriptions := map[string]eventbus.Handler{
		events.ChatStreamStartEventName: func(ctx context.Context, data []byte) {
			var evt events.ChatStreamStartEvent
			if err := json.Unmarshal(data, &evt); err != nil {
				log.Printf("Bad %s payload: %v", events.ChatStreamStartEventName, err)
				return
			}
			log.Printf("[%s] Stream started - Message: %s", evt.ChatID, evt.MessageID)
		},
		events.ChatStreamDoneEventName: func(ctx context.Context, data []byte) {
			var evt events.ChatStreamDoneEvent
			if err := json.Unmarshal(data, &evt); err != nil {
				log.Printf("Bad %s payload: %v", events.ChatStreamDoneEventName, err)
				return
			}
			log.Printf("[%s] Stream done - %d characters, %d tool calls",
				evt.ChatID, len(evt.Message.Content), len(evt.Message.ToolCalls))
		},
		events.ChatStreamErrorEventName: func(ctx context.Context, data []byte) {
			var evt events.ChatStreamErrorEvent
			if err := json.Unmarshal(data, &evt); err != nil {
				log.Printf("Bad %s payload: %v", events.ChatStreamErrorEventName, err)
				return
			}
			log.Printf("[%s] Stream failed: %s", evt.ChatID, evt.Error)
		},
		events.ChatToolCallEventName: func(ctx context.Context, data []byte) {
			var evt events.ChatToolCallEvent
			if err := json.Unmarshal(data, &evt); err != nil {
				log.Printf("Bad %s payload: %v", events.ChatToolCallEventName, err)
				return
			}
			log.Printf("[%s] Tool call %s -> %s", evt.ChatID, evt.ToolCall.ID, evt.ToolCall.Function.Name)
		},
		events.ChatMessagesAddEventName: func(ctx context.Context, data []byte) {
			var evt events.ChatMessagesAddEvent
			if err := json.Unmarshal(data, &evt); err != nil {
				log.Printf("Bad %s payload: %v", events.ChatMessagesAddEventName, err)
				return
			}
			log.Printf("[%s] History now holds %d messages", evt.ChatID, len(evt.Messages))
		},
		events.CompletionDoneEventName: func(ctx context.Context, data []byte) {
			var evt events.CompletionDoneEvent
			if err := json.Unmarshal(data, &evt); err != nil {
				log.Printf("Bad %s payload: %v", events.CompletionDoneEventName, err)
				return
			}
			log.Printf("[%s] Completion done - %d characters", evt.ChatID, len(evt.Completion))
		},
	}
	for subject, handler := range subscriptions {
		if err := bus.Subscribe(subject, queue, handler); err != nil {
			log.Fatalf("Failed to subscribe to %s: %v", subject, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Println("Chat observer stopped")
}
