package kafka_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"catalog/pkg/kafka"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducer_Send(t *testing.T) {
	mp := mocks.NewSyncProducer(t, nil)
	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"type":"product.created"}` {
			return fmt.Errorf("unexpected value %s", val)
		}
		return nil
	})

	p := kafka.NewProducerWith(mp, "catalog.events")
	require.NoError(t, p.Send(context.Background(), "product.created", []byte(`{"type":"product.created"}`)))
	require.NoError(t, p.Close())
}

func TestProducer_SendFailure(t *testing.T) {
	mp := mocks.NewSyncProducer(t, nil)
	mp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := kafka.NewProducerWith(mp, "catalog.events")
	err := p.Send(context.Background(), "user.deleted", []byte("{}"))
	assert.True(t, errors.Is(err, sarama.ErrOutOfBrokers))
	require.NoError(t, p.Close())
}

func TestProducer_SendCanceled(t *testing.T) {
	mp := mocks.NewSyncProducer(t, nil)
	p := kafka.NewProducerWith(mp, "catalog.events")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Send(ctx, "k", []byte("{}")), context.Canceled)
	require.NoError(t, p.Close())
}
