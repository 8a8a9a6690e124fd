package firebase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"firebase.google.com/go/v4/messaging"
)

type fakeMulticaster struct {
	batches [][]string
	respond func(tokens []string) (*messaging.BatchResponse, error)
}

func (f *fakeMulticaster) SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	f.batches = append(f.batches, msg.Tokens)
	return f.respond(msg.Tokens)
}

var errStale = errors.New("registration-token-not-registered")

func TestChunkTokens(t *testing.T) {
	tokens := make([]string, 1001)
	chunks := chunkTokens(tokens, fcmBatchLimit)
	if len(chunks) != 3 {
		t.Fatalf("chunkTokens() = %d chunks, want 3", len(chunks))
	}
	if len(chunks[0]) != 500 || len(chunks[2]) != 1 {
		t.Errorf("chunk sizes = %d, %d, %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
}

func TestSendMulticast_DeactivatesStaleTokens(t *testing.T) {
	fake := &fakeMulticaster{
		respond: func(tokens []string) (*messaging.BatchResponse, error) {
			resp := &messaging.BatchResponse{}
			for _, tok := range tokens {
				if tok == "stale" {
					resp.FailureCount++
					resp.Responses = append(resp.Responses, &messaging.SendResponse{Error: errStale})
					continue
				}
				if tok == "flaky" {
					resp.FailureCount++
					resp.Responses = append(resp.Responses, &messaging.SendResponse{Error: errors.New("unavailable")})
					continue
				}
				resp.SuccessCount++
				resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: true})
			}
			return resp, nil
		},
	}

	var deactivated []string
	c := newClient(fake, func(ctx context.Context, token string) error {
		deactivated = append(deactivated, token)
		return nil
	}, nil)
	c.isStale = func(err error) bool { return errors.Is(err, errStale) }

	sent, err := c.SendMulticast(context.Background(), []string{"ok", "stale", "flaky"}, "t", "b", nil)
	if err != nil {
		t.Fatalf("SendMulticast() unexpected error: %v", err)
	}
	if sent != 1 {
		t.Errorf("SendMulticast() sent = %d, want 1", sent)
	}
	if len(deactivated) != 1 || deactivated[0] != "stale" {
		t.Errorf("deactivated = %v, want [stale]", deactivated)
	}
}

func TestSendMulticast_Batches(t *testing.T) {
	fake := &fakeMulticaster{
		respond: func(tokens []string) (*messaging.BatchResponse, error) {
			return &messaging.BatchResponse{SuccessCount: len(tokens)}, nil
		},
	}
	c := newClient(fake, nil, nil)

	tokens := make([]string, 750)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("tok-%d", i)
	}

	sent, err := c.SendMulticast(context.Background(), tokens, "t", "b", nil)
	if err != nil {
		t.Fatalf("SendMulticast() unexpected error: %v", err)
	}
	if sent != 750 || len(fake.batches) != 2 {
		t.Errorf("SendMulticast() sent = %d in %d batches, want 750 in 2", sent, len(fake.batches))
	}
}

func TestSendMulticast_Empty(t *testing.T) {
	c := newClient(&fakeMulticaster{}, nil, nil)
	if sent, err := c.SendMulticast(context.Background(), nil, "t", "b", nil); sent != 0 || err != nil {
		t.Errorf("SendMulticast(nil) = %d, %v", sent, err)
	}
}

func TestSendMulticast_TransportError(t *testing.T) {
	boom := errors.New("boom")
	c := newClient(&fakeMulticaster{respond: func([]string) (*messaging.BatchResponse, error) { return nil, boom }}, nil, nil)
	if _, err := c.SendMulticast(context.Background(), []string{"a"}, "t", "b", nil); !errors.Is(err, boom) {
		t.Errorf("SendMulticast() error = %v, want %v", err, boom)
	}
}
