package heavy_tests

const (
	kAlpha      = 0.1
	kBeta       = 0.01
	kCycles     = 200
	kBurnIn     = 100
	kSampleLag  = 10
	kWorkers    = 4
	kPartitions = 3
	kSeed       = -1
)
