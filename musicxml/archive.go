package musicxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"path"
	"strings"

	"github.com/pkg/errors"
)

const (
	containerPath = "META-INF/container.xml"
	// upper bound on a decompressed score inside an .mxl archive
	maxRootFileBytes = 64 << 20
)

type container struct {
	RootFiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

func isArchive(raw []byte) bool {
	return bytes.HasPrefix(raw, []byte("PK\x03\x04"))
}

// extractRootFile returns the score named by the archive's container, or the
// first .xml/.musicxml file outside META-INF when there is no container.
func extractRootFile(raw []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, errors.Wrap(err, "opening mxl archive")
	}

	files := map[string]*zip.File{}
	for _, f := range zr.File {
		files[f.Name] = f
	}

	name := ""
	if f, ok := files[containerPath]; ok {
		data, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		var c container
		if err := xml.Unmarshal(data, &c); err != nil {
			return nil, errors.Wrap(err, "reading mxl container")
		}
		for _, rf := range c.RootFiles {
			if rf.MediaType == "" || strings.Contains(rf.MediaType, "musicxml") {
				name = rf.FullPath
				break
			}
		}
	}

	if name == "" {
		for _, f := range zr.File {
			ext := strings.ToLower(path.Ext(f.Name))
			if !strings.HasPrefix(f.Name, "META-INF/") && (ext == ".xml" || ext == ".musicxml") {
				name = f.Name
				break
			}
		}
	}

	f, ok := files[name]
	if !ok {
		return nil, errors.Wrap(ErrNotMusicXML, "mxl archive has no score")
	}
	return readZipFile(f)
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", f.Name)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxRootFileBytes+1))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", f.Name)
	}
	if len(data) > maxRootFileBytes {
		return nil, errors.Errorf("%s exceeds %d bytes", f.Name, maxRootFileBytes)
	}
	return data, nil
}
