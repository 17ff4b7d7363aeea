package stream

import (
	"errors"
	"log"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/matt-g-everett/ledtiming/timing"
)

// ErrPublishTimeout is returned when the broker does not acknowledge a
// frame in time.
var ErrPublishTimeout = errors.New("stream: publish timed out")

// A Publisher delivers encoded frames to a device.
type Publisher interface {
	Publish(payload []byte) error
}

// MqttPublisher publishes frames to an MQTT topic.
type MqttPublisher struct {
	client  mqtt.Client
	topic   string
	qos     byte
	timeout time.Duration
}

// NewMqttPublisher creates a publisher for topic.
func NewMqttPublisher(client mqtt.Client, topic string, qos byte) *MqttPublisher {
	p := new(MqttPublisher)
	p.client = client
	p.topic = topic
	p.qos = qos
	p.timeout = time.Second
	return p
}

// Publish sends payload and waits for the broker.
func (p *MqttPublisher) Publish(payload []byte) error {
	token := p.client.Publish(p.topic, p.qos, false, payload)
	if !token.WaitTimeout(p.timeout) {
		return ErrPublishTimeout
	}
	return token.Error()
}

// Streamer that streams RGB data frames to an ledrx device. It is a
// TimingTarget: every timing event renders the animation at the event's
// fraction and publishes the frame.
type Streamer struct {
	animation Animation
	publisher Publisher
	logger    *log.Logger

	frames   atomic.Int64
	failures atomic.Int64
}

// NewStreamer creates an instance of a Streamer.
func NewStreamer(animation Animation, publisher Publisher, logger *log.Logger) *Streamer {
	s := new(Streamer)
	s.animation = animation
	s.publisher = publisher
	s.logger = logger
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

// SendFrame renders the frame at fraction and publishes it.
func (s *Streamer) SendFrame(fraction float64) error {
	f := s.animation.CalculateFrame(fraction)
	b, _ := f.MarshalBinary()
	if err := s.publisher.Publish(b); err != nil {
		return err
	}
	s.frames.Add(1)
	return nil
}

// Frames returns the number of frames published.
func (s *Streamer) Frames() int64 {
	return s.frames.Load()
}

// Failures returns the number of frames that could not be published.
func (s *Streamer) Failures() int64 {
	return s.failures.Load()
}

func (s *Streamer) Begin(a *timing.Animator) {
	s.logger.Printf("[streamer] begin %s", a)
}

func (s *Streamer) End(a *timing.Animator) {
	s.logger.Printf("[streamer] end frames=%d failures=%d", s.Frames(), s.Failures())
}

func (s *Streamer) Repeat(*timing.Animator) {}

func (s *Streamer) Reverse(a *timing.Animator) {
	s.logger.Printf("[streamer] reversed, now %s", a.Direction())
}

// TimingEvent publishes one frame. Failures are logged, the first and then
// every hundredth.
func (s *Streamer) TimingEvent(_ *timing.Animator, fraction float64) {
	if err := s.SendFrame(fraction); err != nil {
		if n := s.failures.Add(1); n%100 == 1 {
			s.logger.Printf("[streamer] publish failed (%d so far): %v", n, err)
		}
	}
}
