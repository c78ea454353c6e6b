package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"PierToThePast/internal/game"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type inputPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type choosePayload struct {
	Index int `json:"index"`
}

type startStoryPayload struct {
	Story string `json:"story"`
}

// pendingInput is the input-device state between ticks. Move is level-held
// (the client reports the current intent vector); advance/choose/start/
// reset are edge events consumed by exactly one tick.
type pendingInput struct {
	move       game.Vec2
	advance    bool
	choice     int
	startStory string
	reset      bool
	paused     bool
}

func sendJSON(conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// serveWS runs one visitor session: a reader goroutine collecting input
// events and a tick loop driving the game core and pushing frames.
func serveWS(k *Kiosk, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	session := game.NewSession(sessionID, k.Levels, k.Scripts, k.Params.AllowReplay)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sessCtx, span := k.Tracer.Start(ctx, "kiosk.session",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	input := &pendingInput{choice: -1}

	go func() {
		defer cancel()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var inbound inboundMessage
			if err := json.Unmarshal(data, &inbound); err != nil {
				log.Printf("session %s: invalid JSON message: %v", sessionID, err)
				continue
			}
			session.Mu.Lock()
			switch inbound.Type {
			case "input":
				var p inputPayload
				if err := json.Unmarshal(inbound.Payload, &p); err == nil {
					input.move = game.Vec2{X: p.X, Y: p.Y}
				}
			case "advance":
				input.advance = true
			case "choose":
				var p choosePayload
				if err := json.Unmarshal(inbound.Payload, &p); err == nil {
					input.choice = p.Index
				}
			case "start_story":
				var p startStoryPayload
				if err := json.Unmarshal(inbound.Payload, &p); err == nil {
					input.startStory = p.Story
				}
			case "reset":
				input.reset = true
			case "pause":
				input.paused = !input.paused
			default:
				log.Printf("session %s: unknown message type %q", sessionID, inbound.Type)
			}
			session.Mu.Unlock()
		}
	}()

	simTick := time.NewTicker(time.Duration(float64(time.Second) / game.SimHz))
	defer simTick.Stop()

	// Frames go out at a fraction of the sim rate; the collision loop needs
	// more resolution than the renderer does.
	framesEvery := int(game.SimHz / game.UpdateRateHz)
	if framesEvery < 1 {
		framesEvery = 1
	}
	tickCount := 0

	log.Printf("session %s started", sessionID)
	for {
		select {
		case <-ctx.Done():
			log.Printf("session %s closed", sessionID)
			return
		case <-simTick.C:
			session.Mu.Lock()
			frame := game.InputFrame{Move: input.move, Advance: input.advance, Choice: input.choice}
			startStory := input.startStory
			reset := input.reset
			paused := input.paused
			input.advance = false
			input.choice = -1
			input.startStory = ""
			input.reset = false

			var outbound []any

			if reset {
				session.ReturnToHub()
			}
			if startStory != "" {
				if err := session.StartStory(startStory); err != nil {
					switch {
					case errors.Is(err, game.ErrStoryActive),
						errors.Is(err, game.ErrStoryLocked),
						errors.Is(err, game.ErrStoryUnknown):
						outbound = append(outbound, errorMsg{Type: "error", Message: err.Error()})
					default:
						log.Printf("session %s: start story %s: %v", sessionID, startStory, err)
					}
				} else {
					_, storySpan := k.Tracer.Start(sessCtx, "kiosk.story",
						trace.WithAttributes(attribute.String("story.id", startStory)))
					storySpan.End()
				}
			}

			if !paused {
				result := session.Tick(frame)
				if result.CompletedStory != "" {
					_, doneSpan := k.Tracer.Start(sessCtx, "kiosk.story.completed",
						trace.WithAttributes(
							attribute.String("story.id", result.CompletedStory),
							attribute.Float64("session.time_s", session.Now),
						))
					doneSpan.End()
					log.Printf("session %s completed story %s", sessionID, result.CompletedStory)
				}
			}

			tickCount++
			if tickCount%framesEvery == 0 {
				outbound = append(outbound, buildFrame(k, session))
			}
			session.Mu.Unlock()

			for _, msg := range outbound {
				if err := sendJSON(conn, msg); err != nil {
					cancel()
					break
				}
			}
		}
	}
}
