package anchorleak

import (
	"fmt"
	"hash/adler32"

	"github.com/FocuswithJustin/anchorleak/core/encoding"
)

// OutlinksInfoPrefix is the Raffia recipe prefix of the outlinksInfo table.
const OutlinksInfoPrefix = "outlinksInfo"

// DirectoryNum returns the Raffia split of data among shards splits: the
// Adler-32 checksum of data, reduced modulo 65521 after every byte, taken
// modulo shards.
//
// Empty data has checksum 1, so its split is 1 % shards.
// DirectoryNum panics if shards is not positive.
func DirectoryNum(data []byte, shards int) int {
	checkShards(shards)
	return int(adler32.Checksum(data) % uint32(shards))
}

// RowDirectoryNum returns the split of the row with the given recipe
// prefix and row key. Both strings are converted one byte per character
// and checksummed as if concatenated.
func RowDirectoryNum(prefix, rowKey string, shards int) int {
	checkShards(shards)
	h := adler32.New()
	// hash.Hash.Write never returns an error.
	_, _ = h.Write(encoding.StrToByteArray(prefix))
	_, _ = h.Write(encoding.StrToByteArray(rowKey))
	return int(h.Sum32() % uint32(shards))
}

func checkShards(shards int) {
	if shards <= 0 {
		panic(fmt.Sprintf("anchorleak: shard count must be positive, got %d", shards))
	}
}
