package config

type WorkerKeyStruct struct {
	ResultLedgerQueue string
}

var WorkerKey = &WorkerKeyStruct{
	ResultLedgerQueue: "result_ledger_queue",
}
