package sweets

const (
	TopicSweetDeleted   = "catalog.sweet.deleted"
	TopicStockPurchased = "stock.purchased"
	TopicStockRestocked = "stock.restocked"
)

// Partition key = sweet_id, so events for one sweet keep their order.
func PartitionKey(sweetID string) []byte { return []byte(sweetID) }
