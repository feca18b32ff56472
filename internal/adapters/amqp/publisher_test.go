package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"eventmanager/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	declareErr error
	publishErr error
	sent       []published
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, _, _, _ bool, _ amqp.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newPublisher(ch, "")
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultExchange + ":topic"}, ch.declared)

	change := domain.ParticipantChange{
		Type:        domain.ChangeUpdate,
		EventID:     "ev-1",
		Participant: &domain.Participant{ID: "p-1", EventID: "ev-1", Status: domain.StatusAccepted},
	}
	require.NoError(t, p.Publish(context.Background(), change))

	require.Len(t, ch.sent, 1)
	got := ch.sent[0]
	assert.Equal(t, DefaultExchange, got.exchange)
	assert.Equal(t, "participant.update", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)

	var decoded domain.ParticipantChange
	require.NoError(t, json.Unmarshal(got.msg.Body, &decoded))
	assert.Equal(t, change.EventID, decoded.EventID)
	assert.Equal(t, domain.StatusAccepted, decoded.Participant.Status)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublisher_Errors(t *testing.T) {
	ch := &fakeChannel{declareErr: errors.New("access refused")}
	_, err := newPublisher(ch, "custom")
	require.Error(t, err)
	assert.True(t, ch.closed)

	ch = &fakeChannel{publishErr: errors.New("channel closed")}
	p, err := newPublisher(ch, "custom")
	require.NoError(t, err)
	err = p.Publish(context.Background(), domain.ParticipantChange{Type: domain.ChangeDelete, EventID: "ev-1"})
	require.ErrorContains(t, err, "participant.delete")
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "participant.insert", RoutingKey(domain.ChangeInsert))
	assert.Equal(t, "participant.delete", RoutingKey(domain.ChangeDelete))
}
