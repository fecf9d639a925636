package analysis

import (
	"path"

	"github.com/twpayne/go-vfs"

	"github.com/zeu5/qgrid/core"
	"github.com/zeu5/qgrid/util"
)

// JSONComparator saves every experiment's dataset under its name into a
// single JSON file. Failed experiments have no dataset and are left out.
type JSONComparator struct {
	fs       vfs.FS
	savePath string
}

var _ core.Comparator = &JSONComparator{}

func NewJSONComparator(fs vfs.FS, savePath, name string) *JSONComparator {
	return &JSONComparator{
		fs:       fs,
		savePath: path.Join(savePath, name+".json"),
	}
}

func (c *JSONComparator) Compare(experimentNames []string, datasets []core.DataSet) error {
	out := make(map[string]core.DataSet)
	for i, name := range experimentNames {
		if datasets[i] == nil {
			continue
		}
		out[name] = datasets[i]
	}
	return util.SaveJson(c.fs, c.savePath, out)
}
