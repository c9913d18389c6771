package events

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler define la interfaz que debe cumplir cualquier consumidor de eventos.
type MessageHandler interface {
	HandleMessage(ctx context.Context, key string, payload []byte)
}

// messageReader es el subconjunto de *kafka.Reader que usa el adaptador.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Config() kafka.ReaderConfig
}

// ConsumerAdapter es el "oído" que escucha en Kafka.
type ConsumerAdapter struct {
	reader  messageReader
	handler MessageHandler
	log     *zap.Logger
	done    chan struct{}
}

func NewConsumerAdapter(reader messageReader, handler MessageHandler, log *zap.Logger) *ConsumerAdapter {
	return &ConsumerAdapter{
		reader:  reader,
		handler: handler,
		log:     log,
		done:    make(chan struct{}),
	}
}

// Start inicia el bucle de consumo de mensajes en una goroutine.
// Done() se cierra cuando el bucle termina al cancelarse 'ctx'.
func (c *ConsumerAdapter) Start(ctx context.Context) {
	c.log.Info("🎧 Iniciando consumidor de Kafka...",
		zap.String("topic", c.reader.Config().Topic),
		zap.Strings("brokers", c.reader.Config().Brokers),
	)

	go func() {
		defer close(c.done)
		for {
			// ReadMessage es una llamada bloqueante.
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				// Si el contexto se cancela, el error es normal y salimos limpiamente.
				if ctx.Err() != nil {
					c.log.Info("Consumidor de Kafka detenido.", zap.String("topic", c.reader.Config().Topic))
					return
				}
				c.log.Error("Error al leer mensaje de Kafka", zap.Error(err))
				continue
			}

			c.handler.HandleMessage(ctx, string(msg.Key), msg.Value)
		}
	}()
}

// Done permite esperar a que el consumidor se detenga.
func (c *ConsumerAdapter) Done() <-chan struct{} {
	return c.done
}

// BackgroundConsumerChan consume un canal del bus en memoria hasta que se
// cierra o se cancela 'ctx'.
func BackgroundConsumerChan(ctx context.Context, ch <-chan []byte, handler MessageHandler) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case payload, ok := <-ch:
				if !ok {
					return
				}
				// La 'key' no es relevante en el bus en memoria, pasamos una vacía.
				handler.HandleMessage(ctx, "", payload)
			}
		}
	}()
	return done
}
