package rabbitmq

import (
	"errors"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
)

type ackCall struct {
	tag      uint64
	multiple bool
	requeue  bool
}

type recordingAcknowledger struct {
	acks    []ackCall
	nacks   []ackCall
	rejects []ackCall
	err     error
}

func (a *recordingAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acks = append(a.acks, ackCall{tag: tag, multiple: multiple})
	return a.err
}

func (a *recordingAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.nacks = append(a.nacks, ackCall{tag: tag, multiple: multiple, requeue: requeue})
	return a.err
}

func (a *recordingAcknowledger) Reject(tag uint64, requeue bool) error {
	a.rejects = append(a.rejects, ackCall{tag: tag, requeue: requeue})
	return a.err
}

func TestHandleDelivery(t *testing.T) {
	tests := []struct {
		name      string
		handleErr error
		ackErr    error
		wantAcks  []ackCall
		wantNacks []ackCall
	}{
		{name: "accepted", wantAcks: []ackCall{{tag: 7}}},
		{name: "rejected", handleErr: errors.New("bad payload"), wantNacks: []ackCall{{tag: 7}}},
		{name: "ack failure is logged", ackErr: errors.New("channel closed"), wantAcks: []ackCall{{tag: 7}}},
		{name: "nack failure is logged", handleErr: errors.New("bad payload"), ackErr: errors.New("channel closed"), wantNacks: []ackCall{{tag: 7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &recordingAcknowledger{err: tt.ackErr}
			var got []byte
			handleDelivery(amqp.Delivery{Acknowledger: ack, DeliveryTag: 7, Body: []byte(`{"type":"x"}`)}, func(body []byte) error {
				got = body
				return tt.handleErr
			})

			assert.Equal(t, []byte(`{"type":"x"}`), got)
			assert.Equal(t, tt.wantAcks, ack.acks)
			assert.Equal(t, tt.wantNacks, ack.nacks)
			assert.Empty(t, ack.rejects)
		})
	}
}
