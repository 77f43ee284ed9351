package test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/infra/mqtt"
)

func waitForMQTTReady(broker string, timeout time.Duration) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("probe")
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		token.Wait()
		if token.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		lastErr = token.Error()
		time.Sleep(100 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for broker")
	}
	return lastErr
}

func startMosquitto(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	conf := `listener 1883
allow_anonymous true
persistence false
log_dest stdout
`
	dir := t.TempDir()
	path := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		t.Fatalf("write conf: %v", err)
	}

	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{
			{
				HostFilePath:      path,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0644,
			},
		},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container start: %v", err)
	}
	host, err := cont.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())
	if err := waitForMQTTReady(broker, 5*time.Second); err != nil {
		t.Logf("mosquitto not ready at %s: %v", broker, err)
		t.Skip("Mosquitto not ready after retries")
	}
	return cont, broker
}

func TestQuoteEventPublishWithMQTTContainer(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
	ctx := context.Background()

	cont, broker := startMosquitto(ctx, t)
	defer func() { _ = cont.Terminate(ctx) }()

	received := make(chan mqtt.QuoteEvent, 1)
	subOpts := paho.NewClientOptions().AddBroker(broker).SetClientID("quote-sub")
	sub := paho.NewClient(subOpts)
	if token := sub.Connect(); token.Wait() && token.Error() != nil {
		t.Fatalf("subscriber connect: %v", token.Error())
	}
	defer sub.Disconnect(100)
	if token := sub.Subscribe("quotes/recalculated", 1, func(_ paho.Client, m paho.Message) {
		var ev mqtt.QuoteEvent
		if err := json.Unmarshal(m.Payload(), &ev); err != nil {
			t.Errorf("decode payload: %v", err)
			return
		}
		select {
		case received <- ev:
		default:
		}
	}); token.Wait() && token.Error() != nil {
		t.Fatalf("subscribe: %v", token.Error())
	}

	pub, err := mqtt.NewPublisher(mqtt.Config{
		Enabled: true,
		Broker:  broker,
		QoS:     1,
	})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	defer pub.Close()

	want := mqtt.QuoteEvent{
		SessionID:       "e2e-session",
		Location:        "nord",
		LineItems:       5,
		ProtectionItems: 3,
		Diagnostics:     0,
		GrandTotal:      4321.5,
		Time:            time.Now().UTC(),
	}
	if err := pub.Publish(want); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-received:
		if got.SessionID != want.SessionID {
			t.Fatalf("expected session %s got %s", want.SessionID, got.SessionID)
		}
		if got.GrandTotal != want.GrandTotal {
			t.Fatalf("expected total %v got %v", want.GrandTotal, got.GrandTotal)
		}
		if got.LineItems != want.LineItems || got.ProtectionItems != want.ProtectionItems {
			t.Fatalf("unexpected counts in %+v", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no quote event received")
	}
}
