package events_test

import (
	"testing"

	"github.com/ardanlabs/coin/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Events(t *testing.T) {
	t.Log("Given the need to fan out events to receivers.")
	{
		evts := events.New()

		testID := 0
		t.Logf("\tTest %d:\tWhen two receivers are registered.", testID)
		{
			ch1 := evts.Acquire("one")
			ch2 := evts.Acquire("two")

			if evts.Acquire("one") != ch1 {
				t.Fatalf("\t%s\tTest %d:\tShould reuse the channel of a known id.", failed, testID)
			}

			evts.Send("viewer: block: {}")

			if msg := <-ch1; msg != "viewer: block: {}" {
				t.Fatalf("\t%s\tTest %d:\tShould deliver to the first receiver: %q", failed, testID, msg)
			}
			if msg := <-ch2; msg != "viewer: block: {}" {
				t.Fatalf("\t%s\tTest %d:\tShould deliver to the second receiver: %q", failed, testID, msg)
			}
			t.Logf("\t%s\tTest %d:\tShould deliver to every receiver.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a receiver falls behind.", testID)
		{
			ch := evts.Acquire("slow")
			for i := 0; i < 1000; i++ {
				evts.Send("event")
			}

			if len(ch) != cap(ch) {
				t.Fatalf("\t%s\tTest %d:\tShould drop events instead of blocking.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould drop events instead of blocking.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen releasing and shutting down.", testID)
		{
			if err := evts.Release("one"); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould release the receiver: %v", failed, testID, err)
			}
			if err := evts.Release("one"); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould fail to release twice.", failed, testID)
			}

			ch := evts.Acquire("last")
			evts.Shutdown()

			if _, open := <-ch; open {
				t.Fatalf("\t%s\tTest %d:\tShould close the channels.", failed, testID)
			}
			if evts.Receivers() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould remove every receiver.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould close every channel.", success, testID)
		}
	}
}
