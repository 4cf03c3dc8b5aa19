package armasm

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func loadGoldenHex(t *testing.T, path string) []uint32 {
	t.Helper()
	fp, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer fp.Close()

	var words []uint32
	scanner := bufio.NewScanner(fp)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseUint(strings.TrimPrefix(line, "0x"), 16, 32)
		if err != nil {
			t.Fatalf("parsing golden word %q: %v", line, err)
		}
		words = append(words, uint32(v))
	}
	return words
}

func TestGoldenFixtures(t *testing.T) {
	cases := []string{"arm32_subtract", "arm32_fib", "arm32_prime"}
	for _, name := range cases {
		t.Run(name, func(t *testing.T) {
			srcPath := filepath.Join("testdata", name+".s")
			hexPath := filepath.Join("testdata", name+".hex")

			src, err := os.Open(srcPath)
			require.NoError(t, err)
			defer src.Close()

			got, err := Assemble(src)
			require.NoError(t, err)
			want := loadGoldenHex(t, hexPath)

			require.Len(t, got, len(want))
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("word %d = %#08x, want %#08x", i, got[i], want[i])
				}
			}
		})
	}
}
