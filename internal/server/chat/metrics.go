package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mealmate_chat_connected_clients",
		Help: "Number of websocket clients registered with the chat hub",
	})

	messagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mealmate_chat_messages_total",
		Help: "Chat messages appended to the room",
	})

	droppedClientsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mealmate_chat_dropped_clients_total",
		Help: "Clients removed because their send buffer was full",
	})
)
