package memory_test

import (
	"testing"

	"github.com/warp/incentive-engine/store"
	"github.com/warp/incentive-engine/store/memory"
	"github.com/warp/incentive-engine/store/storetest"
)

func TestMemory(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return memory.New(nil)
	})
}
