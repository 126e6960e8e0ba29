package policy

import (
	"encoding/json"

	"github.com/samber/lo"
)

const (
	EffectAllow = "Allow"

	documentVersion = "2012-10-17"
)

// Statement is one IAM policy statement. Resource entries are either plain ARNs or resolved
// CloudFormation intrinsics (e.g. {"Fn::GetAtt": [...]}), so they can be embedded in a template
// as-is.
type Statement struct {
	Effect   string        `json:"Effect"`
	Action   []string      `json:"Action"`
	Resource []interface{} `json:"Resource"`
}

// Allow builds an Allow statement.
func Allow(actions []string, resources ...interface{}) Statement {
	return Statement{
		Effect:   EffectAllow,
		Action:   actions,
		Resource: resources,
	}
}

// Document is an IAM policy document.
type Document struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// NewDocument wraps statements into a policy document.
func NewDocument(statements []Statement) Document {
	if statements == nil {
		statements = []Statement{}
	}
	return Document{Version: documentVersion, Statement: statements}
}

// Actions returns every distinct action in the document, in first-seen order.
func (d Document) Actions() []string {
	return lo.Uniq(lo.FlatMap(d.Statement, func(s Statement, _ int) []string {
		return s.Action
	}))
}

// ToCfn returns the document in the shape CloudFormation expects for a PolicyDocument property.
func (d Document) ToCfn() map[string]interface{} {
	return map[string]interface{}{
		"Version": d.Version,
		"Statement": lo.Map(d.Statement, func(s Statement, _ int) interface{} {
			return map[string]interface{}{
				"Effect":   s.Effect,
				"Action":   s.Action,
				"Resource": s.Resource,
			}
		}),
	}
}

// JSON renders the document with indentation.
func (d Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
