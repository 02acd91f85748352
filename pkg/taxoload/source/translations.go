package source

import (
	"bufio"
	"io"
	"strings"
)

const translationSep = " : "

// ParseTranslations reads the "<uri> : <text>" format of dist/<lang>/*.txt.
//
// Lines starting with '#' and lines without the separator are skipped. The
// line is split at the first separator; entries with an empty uri or text
// are dropped. A repeated uri keeps its last text.
func ParseTranslations(r io.Reader) (map[string]string, error) {
	translations := make(map[string]string)
	br := bufio.NewReader(r)

	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		parseTranslationLine(translations, strings.TrimRight(line, "\r\n"))
		if err == io.EOF {
			return translations, nil
		}
	}
}

func parseTranslationLine(translations map[string]string, line string) {
	if strings.HasPrefix(line, "#") {
		return
	}
	uri, text, ok := strings.Cut(line, translationSep)
	if !ok {
		return
	}
	uri = strings.TrimSpace(uri)
	text = strings.TrimSpace(text)
	if uri == "" || text == "" {
		return
	}
	translations[uri] = text
}
