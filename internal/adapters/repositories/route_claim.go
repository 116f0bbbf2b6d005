package repositories

import (
	"fmt"
	"route-sequencer-service/internal/domain"
	"sort"
	"strings"
)

// claimDeliveries checks that every sequenced stop backed by a delivery is
// still pending. statuses holds the current status of the known deliveries;
// stops without an entry (the depot) are ignored. It returns the ids to mark
// routed, or a *domain.ValidationError naming the deliveries already taken.
func claimDeliveries(stops []domain.SequencedStop, statuses map[string]string) ([]string, error) {
	claimed := make([]string, 0, len(stops))
	var taken []string
	for _, s := range stops {
		status, ok := statuses[s.ID]
		if !ok {
			continue
		}
		if status != domain.DeliveryPending {
			taken = append(taken, s.ID)
			continue
		}
		claimed = append(claimed, s.ID)
	}

	if len(taken) > 0 {
		sort.Strings(taken)
		return nil, &domain.ValidationError{
			Field:  "entregas_ids",
			Reason: fmt.Sprintf("deliveries %s are no longer pending", strings.Join(taken, ", ")),
		}
	}
	return claimed, nil
}
