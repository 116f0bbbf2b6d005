package repositories

import (
	"testing"

	"route-sequencer-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestClaimDeliveries(t *testing.T) {
	stops := []domain.SequencedStop{
		{Stop: domain.Stop{ID: "depot"}, Position: 1},
		{Stop: domain.Stop{ID: "b"}, Position: 2},
		{Stop: domain.Stop{ID: "a"}, Position: 3},
	}

	claimed, err := claimDeliveries(stops, map[string]string{
		"a": domain.DeliveryPending,
		"b": domain.DeliveryPending,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a"}, claimed)

	_, err = claimDeliveries(stops, map[string]string{
		"a": domain.DeliveryRouted,
		"b": domain.DeliveryPending,
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "entregas_ids", ve.Field)
	require.Contains(t, ve.Reason, "a")
}
