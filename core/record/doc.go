// Package record provides the attribute-bag record model and its factory.
//
// A Schema declares the identity attribute, the kind of each attribute (text,
// time of day, date, datetime, relations) and the validators a bag must pass.
// It implements collection.Factory; every record it materializes is a *Model.
//
// Values for temporal kinds may arrive as strings (JSON, YAML, query
// parameters). The schema coerces them to time.Time on creation and on merge so
// that the collection's comparator always sees comparable values.
//
// # Usage
//
//	schema := record.NewSchema(
//	    record.WithKind("name", collection.KindText),
//	    record.WithKind("opensAt", collection.KindTimeOfDay),
//	    record.WithValidator(record.Required("name")),
//	)
//	rec, err := schema.New(collection.Attributes{"id": 1, "name": "Ada"}, collection.FactoryOptions{})
package record
