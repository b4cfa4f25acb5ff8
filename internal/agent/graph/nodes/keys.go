package nodes

// Node keys of the copilot graph, in execution order.
const (
	NodeContextCarrier    = "ContextCarrier"
	NodeClassifier        = "Classifier"
	NodeRetriever         = "Retriever"
	NodeResponseAssembler = "ResponseAssembler"
	NodeResponseChatModel = "ResponseChatModel"
	NodeHistoryUpdater    = "HistoryUpdater"
)
