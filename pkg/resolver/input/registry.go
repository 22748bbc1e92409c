package input

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// LoadRegistry parses a registry catalog document into a Static provider.
//
// The catalog lists tools, their versions and each version's dependency
// constraints:
//
//	{
//	  "tools": {
//	    "nodejs": {
//	      "versions": {
//	        "20.1.0": {"deps": {"icu": ">=70"}},
//	        "18.19.0": {}
//	      }
//	    }
//	  }
//	}
//
// An entry without "deps" declares a dependency-free version.
func LoadRegistry(data []byte) (*Static, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("registry: invalid JSON document")
	}
	tools := gjson.GetBytes(data, "tools")
	if !tools.Exists() {
		return nil, fmt.Errorf("registry: missing \"tools\" object")
	}

	s := NewStatic()
	var loadErr error
	tools.ForEach(func(tool, body gjson.Result) bool {
		body.Get("versions").ForEach(func(ver, entry gjson.Result) bool {
			deps := Deps{}
			entry.Get("deps").ForEach(func(dep, constraint gjson.Result) bool {
				deps[dep.String()] = constraint.String()
				return true
			})
			if err := s.Add(tool.String(), ver.String(), deps); err != nil {
				loadErr = fmt.Errorf("registry: %w", err)
				return false
			}
			return true
		})
		return loadErr == nil
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return s, nil
}
