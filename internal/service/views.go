package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Logical views that cache entries are grouped under. A view is invalidated as
// a whole with the pattern "<view>:*".
const viewPrefix = "views"

func sentRequestsView(businessID string) string {
	return fmt.Sprintf("%s:requests:sent:%s", viewPrefix, businessID)
}

func incomingRequestsView(creatorID string) string {
	return fmt.Sprintf("%s:requests:incoming:%s", viewPrefix, creatorID)
}

func campaignsView(userID string) string {
	return fmt.Sprintf("%s:campaigns:%s", viewPrefix, userID)
}

func dashboardView(userID string) string {
	return fmt.Sprintf("%s:dashboard:%s", viewPrefix, userID)
}

func discoveryView() string {
	return viewPrefix + ":discovery"
}

func adminView() string {
	return viewPrefix + ":admin"
}

// viewKey derives a cache key inside view from an arbitrary, JSON encodable variant.
func viewKey(view string, variant interface{}) string {
	raw, err := json.Marshal(variant)
	if err != nil {
		raw = []byte(fmt.Sprintf("%v", variant))
	}
	sum := sha256.Sum256(raw)
	return view + ":" + hex.EncodeToString(sum[:8])
}

// pairViews lists every view that shows a request or campaign between the two parties.
func pairViews(businessID, creatorID string) []string {
	return []string{
		sentRequestsView(businessID),
		incomingRequestsView(creatorID),
		campaignsView(businessID),
		campaignsView(creatorID),
		dashboardView(businessID),
		dashboardView(creatorID),
		adminView(),
	}
}
