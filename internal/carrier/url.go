package carrier

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// DefaultQueryTemplate is the public carrier snapshot lookup endpoint. The
// single %s verb receives the URL-encoded identifier.
const DefaultQueryTemplate = "https://safer.fmcsa.dot.gov/query.asp?searchtype=ANY&query_type=queryCarrierSnapshot&query_param=USDOT&query_string=%s"

// LookupURL derives the lookup address for an identifier. It is a pure
// function of its inputs.
func LookupURL(template string, id Identifier) string {
	if template == "" {
		template = DefaultQueryTemplate
	}
	return fmt.Sprintf(template, url.QueryEscape(strings.TrimSpace(string(id))))
}

// ReadIdentifiers parses one identifier per line, trimming whitespace and
// discarding blank lines.
func ReadIdentifiers(r io.Reader) ([]Identifier, error) {
	var ids []Identifier
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ids = append(ids, Identifier(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read identifiers: %w", err)
	}
	return ids, nil
}
