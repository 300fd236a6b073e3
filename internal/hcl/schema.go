package hcl

// fileRoot decodes all possible top-level blocks from any file.
type fileRoot struct {
	Grid         *gridBlock          `hcl:"grid,block"`
	Sequence     *sequenceBlock      `hcl:"sequence,block"`
	Aggregations []*aggregationBlock `hcl:"aggregation,block"`
	Storage      *storageBlock       `hcl:"storage,block"`
	Server       *serverBlock        `hcl:"server,block"`
}

type gridBlock struct {
	Size *int `hcl:"size,optional"`
}

type sequenceBlock struct {
	Holds []string `hcl:"holds,optional"`
	Level *string  `hcl:"level,optional"`
}

type aggregationBlock struct {
	Name    string `hcl:"name,label"`
	Indices []int  `hcl:"indices"`
}

type storageBlock struct {
	Driver *string `hcl:"driver,optional"`
	Path   *string `hcl:"path,optional"`
}

type serverBlock struct {
	Listen *string `hcl:"listen,optional"`
}
