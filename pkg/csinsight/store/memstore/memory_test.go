package memstore

import (
	"testing"

	"github.com/cognicore/csinsight/pkg/csinsight/store"
	"github.com/cognicore/csinsight/pkg/csinsight/store/storetest"
)

func TestMemStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}
