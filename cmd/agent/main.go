package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"overseer/internal/agent"
	persistlog "overseer/internal/persistence/log"
	"overseer/internal/protocol"
	"overseer/internal/sim/tuning"
)

func main() {
	var (
		url        = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name       = flag.String("name", "overseer", "agent name")
		tuningPath = flag.String("tuning", "", "tuning.yaml path (defaults built in)")
		dataDir    = flag.String("data", "./data", "directory for decision logs")
	)
	flag.Parse()

	logger := stdlog()
	cfg := tuning.Default()
	if *tuningPath != "" {
		loaded, err := tuning.Load(*tuningPath)
		if err != nil {
			logger.Fatalf("tuning: %v", err)
		}
		cfg = loaded
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		AgentName:       *name,
		SessionID:       uuid.NewString(),
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	decisions := persistlog.NewDecisionLogger(*dataDir)
	defer decisions.Close()

	sess := newSession()
	engine := agent.NewEngine(cfg, logger, sess, sess, decisions)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			logger.Printf("read: %v", err)
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			sess.agentID = w.AgentID
			logger.Printf("WELCOME agent_id=%s player=%s segments=%d",
				w.AgentID, w.PlayerName, w.WorldParams.SegmentCount)

		case protocol.TypeObs:
			var obs protocol.ObsMsg
			if err := json.Unmarshal(msg, &obs); err != nil {
				continue
			}
			sess.load(&obs)
			engine.Tick()
			if act := sess.flush(); act != nil {
				if err := conn.WriteJSON(act); err != nil {
					logger.Printf("send ACT: %v", err)
					return
				}
			}

		case protocol.TypeAck:
			var ack protocol.AckMsg
			if err := json.Unmarshal(msg, &ack); err != nil {
				continue
			}
			if !ack.Accepted {
				logger.Printf("ACT rejected: %s %s", ack.Code, ack.Message)
			}
		}
	}
}

func stdlog() *log.Logger {
	return log.New(os.Stdout, "[agent] ", log.LstdFlags|log.Lmicroseconds)
}
