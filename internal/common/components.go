package common

const (
	ComponentPlanner    = "planner"
	ComponentCheckpoint = "checkpoint"
	ComponentChainState = "chainstate"
	ComponentRPCClient  = "rpcclient"
	ComponentFetcher    = "fetcher"
	ComponentWarehouse  = "warehouse"
	ComponentTailer     = "tailer"
	ComponentWorker     = "worker"
	ComponentABI        = "abiregistry"
	ComponentDecode     = "decode"
)
