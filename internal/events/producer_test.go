package events

import (
	"bytes"
	"context"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("producer", Ordered, func() {
	Context("write", func() {
		It("writes successfully", func() {
			w := newTestWriter()
			ep := NewEventProducer(w)

			err := ep.Write(context.TODO(), JobCreatedKind, bytes.NewReader([]byte("msg1")))
			Expect(err).To(BeNil())

			err = ep.Write(context.TODO(), ImportCompletedKind, bytes.NewReader([]byte("msg2")))
			Expect(err).To(BeNil())

			Eventually(w.Len, 5*time.Second).Should(Equal(2))

			messages := w.Snapshot()
			Expect(messages[0].Type()).To(Equal(JobCreatedKind))
			Expect(messages[0].Source()).To(Equal(eventSource))
			Expect(messages[0].Data()).To(Equal([]byte("msg1")))
			Expect(messages[1].Type()).To(Equal(ImportCompletedKind))

			Expect(w.Topic()).To(Equal(defaultTopic))

			ep.Close()
		})

		It("honors the output topic option", func() {
			w := newTestWriter()
			ep := NewEventProducer(w, WithOutputTopic("custom.topic"))

			err := ep.Write(context.TODO(), ImportFailedKind, bytes.NewReader([]byte("msg")))
			Expect(err).To(BeNil())

			Eventually(w.Len, 5*time.Second).Should(Equal(1))
			Expect(w.Topic()).To(Equal("custom.topic"))

			ep.Close()
		})
	})
})

type testwriter struct {
	mu       sync.Mutex
	messages []cloudevents.Event
	topic    string
}

func newTestWriter() *testwriter {
	return &testwriter{messages: []cloudevents.Event{}}
}

func (t *testwriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.topic = topic
	t.messages = append(t.messages, e)
	return nil
}

func (t *testwriter) Close(_ context.Context) error {
	return nil
}

func (t *testwriter) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

func (t *testwriter) Snapshot() []cloudevents.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]cloudevents.Event{}, t.messages...)
}

func (t *testwriter) Topic() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.topic
}
