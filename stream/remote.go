package stream

import (
	"encoding/json"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ControlMessage is a show command sent by a client app over MQTT, e.g.
// {"type": "pause"}.
type ControlMessage struct {
	Type string `json:"type"`
}

// An Executor runs show commands.
type Executor interface {
	Execute(cmd Command) (bool, error)
}

// Remote lets MQTT clients control the show.
type Remote struct {
	client mqtt.Client
	topic  string
	qos    byte
	show   Executor
	logger *log.Logger
}

// NewRemote creates a Remote listening on topic.
func NewRemote(client mqtt.Client, topic string, qos byte, show Executor, logger *log.Logger) *Remote {
	r := new(Remote)
	r.client = client
	r.topic = topic
	r.qos = qos
	r.show = show
	r.logger = logger
	if r.logger == nil {
		r.logger = log.Default()
	}
	return r
}

func (r *Remote) handleClientMessages(client mqtt.Client, msg mqtt.Message) {
	r.logger.Printf("[remote] received msg %d on %s: %s", msg.MessageID(), msg.Topic(), msg.Payload())

	var message ControlMessage
	if err := json.Unmarshal(msg.Payload(), &message); err != nil {
		r.logger.Printf("[remote] bad message: %v", err)
		return
	}
	cmd, err := ParseCommand(message.Type)
	if err != nil {
		r.logger.Printf("[remote] %v", err)
		return
	}
	ok, err := r.show.Execute(cmd)
	switch {
	case err != nil:
		r.logger.Printf("[remote] %s failed: %v", cmd, err)
	case !ok:
		r.logger.Printf("[remote] %s had no effect", cmd)
	}
}

// Subscribe starts listening. Call it again from the client's on-connect
// handler after a reconnect.
func (r *Remote) Subscribe() error {
	if r.topic == "" {
		return nil
	}
	token := r.client.Subscribe(r.topic, r.qos, r.handleClientMessages)
	token.Wait()
	return token.Error()
}
