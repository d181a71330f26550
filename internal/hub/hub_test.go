package hub

import (
	"reflect"
	"testing"
)

func TestChannelPublishAndUnsubscribe(t *testing.T) {
	c := NewChannel[int]()
	if _, ok := c.Current(); ok {
		t.Fatal("new channel should have no value")
	}

	var got []int
	unsub := c.Subscribe(func(v int) { got = append(got, v) })
	c.Publish(1)
	c.Publish(2)
	unsub()
	unsub() // idempotent
	c.Publish(3)

	if !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("got %v, want [1 2]", got)
	}
	if v, ok := c.Current(); !ok || v != 3 {
		t.Errorf("Current() = %d, %v", v, ok)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d", c.Len())
	}
}

func TestSubscribeNowReplaysCurrent(t *testing.T) {
	c := NewChannel[string]()

	var early []string
	c.SubscribeNow(func(v string) { early = append(early, v) })
	if len(early) != 0 {
		t.Fatalf("empty channel replayed %v", early)
	}

	c.Publish("a")
	var late []string
	c.SubscribeNow(func(v string) { late = append(late, v) })
	c.Publish("b")

	if !reflect.DeepEqual(early, []string{"a", "b"}) {
		t.Errorf("early = %v", early)
	}
	if !reflect.DeepEqual(late, []string{"a", "b"}) {
		t.Errorf("late = %v", late)
	}
}

func TestStageDefersDelivery(t *testing.T) {
	c := NewChannel[int]()
	var got []int
	c.Subscribe(func(v int) { got = append(got, v) })

	c.Stage(1)
	c.Stage(2)
	if len(got) != 0 {
		t.Fatalf("Stage delivered early: %v", got)
	}
	c.Flush()
	if !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("got %v", got)
	}
}

func TestReentrantPublishKeepsOrder(t *testing.T) {
	c := NewChannel[int]()
	var got []int
	c.Subscribe(func(v int) {
		got = append(got, v)
		if v == 1 {
			c.Publish(2)
			got = append(got, -1) // runs before 2 is delivered
		}
	})
	c.Publish(1)
	if !reflect.DeepEqual(got, []int{1, -1, 2}) {
		t.Errorf("got %v", got)
	}
}

func TestUnsubscribeDuringDelivery(t *testing.T) {
	c := NewChannel[int]()
	var second []int
	var unsubSecond func()
	c.Subscribe(func(int) { unsubSecond() })
	unsubSecond = c.Subscribe(func(v int) { second = append(second, v) })

	c.Publish(1)
	c.Publish(2)
	// Map iteration order decides whether the first delivery reaches the
	// second subscriber; the second delivery never does.
	for _, v := range second {
		if v == 2 {
			t.Errorf("unsubscribed callback saw %v", second)
		}
	}
}

func TestRegistryCleanup(t *testing.T) {
	r := NewRegistry[string, *int]()
	var got []*int
	unsubA := r.Subscribe("Seed:Tulip", func(v *int) { got = append(got, v) })
	unsubB := r.Subscribe("Seed:Tulip", func(*int) {})
	r.Subscribe("Seed:Carrot", func(*int) {})
	if r.Keys() != 2 {
		t.Fatalf("Keys() = %d", r.Keys())
	}

	one := 1
	r.Stage("Seed:Tulip", &one)
	r.Stage("Egg:CommonEgg", &one) // nobody listens
	r.Flush()
	if len(got) != 1 || *got[0] != 1 {
		t.Fatalf("got %v", got)
	}

	unsubA()
	if r.Keys() != 2 {
		t.Errorf("key dropped while a subscriber remains")
	}
	unsubB()
	if r.Keys() != 1 {
		t.Errorf("Keys() after last unsubscribe = %d", r.Keys())
	}

	var final []*int
	r.Subscribe("Seed:Carrot", func(v *int) { final = append(final, v) })
	r.Retire("Seed:Carrot", nil)
	r.Flush()
	if len(final) != 1 || final[0] != nil {
		t.Errorf("final = %v", final)
	}
	if r.Keys() != 0 {
		t.Errorf("Keys() after retire = %d", r.Keys())
	}
}
