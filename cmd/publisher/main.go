package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type locationMessage struct {
	UserID    string  `json:"user_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
	Accuracy  float64 `json:"accuracy"`
	Speed     float64 `json:"speed"`
}

// Mumbai
const (
	homeLat = 19.0760
	homeLon = 72.8777
	// about 100m in degrees of latitude
	step = 0.0009
	// walkers drifting further than ~2km are pulled back
	maxDrift = 0.018
)

type walker struct {
	userID   string
	lat, lon float64
}

func (w *walker) move() {
	w.lat += (rand.Float64() - 0.5) * 2 * step
	w.lon += (rand.Float64() - 0.5) * 2 * step
	if w.lat-homeLat > maxDrift || homeLat-w.lat > maxDrift {
		w.lat = homeLat + (w.lat-homeLat)/2
	}
	if w.lon-homeLon > maxDrift || homeLon-w.lon > maxDrift {
		w.lon = homeLon + (w.lon-homeLon)/2
	}
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds> [users]\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	users := 3
	if len(os.Args) > 2 {
		if users, err = strconv.Atoi(os.Args[2]); err != nil || users <= 0 {
			fmt.Fprintf(os.Stderr, "error: users must be a positive integer\n")
			os.Exit(1)
		}
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("followmee-mock-device")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		logger.Error("mqtt connect", slog.Any("error", token.Error()))
		os.Exit(1)
	}
	defer client.Disconnect(250)

	walkers := make([]*walker, users)
	for i := range walkers {
		walkers[i] = &walker{userID: fmt.Sprintf("user-%d", i+1), lat: homeLat, lon: homeLon}
	}

	logger.Info("publishing", slog.String("broker", broker), slog.Int("interval_s", intervalSec), slog.Int("users", users))

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sig:
			logger.Info("shutting down")
			return
		case <-ticker.C:
		}

		w := walkers[rand.Intn(len(walkers))]
		w.move()

		msg := locationMessage{
			UserID:    w.userID,
			Latitude:  w.lat,
			Longitude: w.lon,
			Timestamp: time.Now().UnixMilli(),
			Accuracy:  5 + rand.Float64()*20,
			Speed:     rand.Float64() * 2,
		}

		payload, _ := json.Marshal(msg)
		topic := fmt.Sprintf("followmee/users/%s/location", w.userID)

		token := client.Publish(topic, 1, false, payload)
		token.Wait()
		if err := token.Error(); err != nil {
			logger.Warn("publish failed", slog.String("topic", topic), slog.Any("error", err))
			continue
		}

		logger.Info("published", slog.String("topic", topic), slog.String("payload", string(payload)))
	}
}
