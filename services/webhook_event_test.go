package services_test

import (
	"errors"
	"testing"

	"linear-gamification/services"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseCompletionEvent(t *testing.T) {
	Convey("Given a Linear webhook body", t, func() {
		Convey("When an issue moves to Done", func() {
			ev, err := services.ParseCompletionEvent([]byte(`{
				"type": "Issue",
				"action": "update",
				"data": {
					"id": "LIN-42",
					"title": "Rotate the keys",
					"state": {"name": "Done"},
					"assignee": {"name": "Alice"},
					"estimate": 3,
					"priority": 2,
					"priorityLabel": "High"
				}
			}`))

			Convey("Then the completion is extracted", func() {
				So(err, ShouldBeNil)
				So(ev, ShouldNotBeNil)
				So(ev.TaskID, ShouldEqual, "LIN-42")
				So(ev.Title, ShouldEqual, "Rotate the keys")
				So(ev.AssigneeName, ShouldEqual, "Alice")
				So(*ev.Estimate, ShouldEqual, 3.0)
				So(ev.Priority, ShouldEqual, "High")
			})
		})

		Convey("When the priority is a label string", func() {
			ev, err := services.ParseCompletionEvent([]byte(`{"type":"Issue","action":"update","data":{"id":"A","state":{"name":"Done"},"priority":"Urgent"}}`))
			So(err, ShouldBeNil)
			So(ev.Priority, ShouldEqual, "Urgent")
			So(ev.Estimate, ShouldBeNil)
			So(ev.AssigneeName, ShouldEqual, "")
		})

		Convey("When the priority is a numeric string", func() {
			ev, err := services.ParseCompletionEvent([]byte(`{"type":"Issue","action":"update","data":{"id":"A","state":{"name":"Done"},"priority":"3"}}`))
			So(err, ShouldBeNil)
			So(ev.Priority, ShouldEqual, "Medium")
		})

		Convey("When the priority is 0", func() {
			ev, err := services.ParseCompletionEvent([]byte(`{"type":"Issue","action":"update","data":{"id":"A","state":{"name":"Done"},"priority":0}}`))
			So(err, ShouldBeNil)
			So(ev.Priority, ShouldEqual, "No priority")
		})

		Convey("When the issue is not Done", func() {
			ev, err := services.ParseCompletionEvent([]byte(`{"type":"Issue","action":"update","data":{"id":"A","state":{"name":"In Progress"}}}`))
			So(err, ShouldBeNil)
			So(ev, ShouldBeNil)
		})

		Convey("When the delivery is not an issue update", func() {
			for _, body := range []string{
				`{"type":"Comment","action":"update","data":{"id":"A","state":{"name":"Done"}}}`,
				`{"type":"Issue","action":"create","data":{"id":"A","state":{"name":"Done"}}}`,
				`{"type":"Issue","action":"update"}`,
				`{"type":"Issue","action":"update","data":"oops"}`,
				`[1, 2, 3]`,
			} {
				ev, err := services.ParseCompletionEvent([]byte(body))
				So(err, ShouldBeNil)
				So(ev, ShouldBeNil)
			}
		})

		Convey("When a Done issue has no id", func() {
			_, err := services.ParseCompletionEvent([]byte(`{"type":"Issue","action":"update","data":{"state":{"name":"Done"}}}`))
			So(err, ShouldEqual, services.ErrMissingTaskID)
		})

		Convey("When the issue id is a number", func() {
			ev, err := services.ParseCompletionEvent([]byte(`{"type":"Issue","action":"update","data":{"id":12345,"state":{"name":"Done"}}}`))
			So(err, ShouldBeNil)
			So(ev.TaskID, ShouldEqual, "12345")
		})

		Convey("When the issue id is neither a string nor a number", func() {
			for _, id := range []string{`true`, `{"value":"A"}`, `null`, `"  "`} {
				_, err := services.ParseCompletionEvent([]byte(`{"type":"Issue","action":"update","data":{"id":` + id + `,"state":{"name":"Done"}}}`))
				So(err, ShouldEqual, services.ErrMissingTaskID)
			}
		})

		Convey("When the body is not JSON", func() {
			_, err := services.ParseCompletionEvent([]byte(`not json`))
			So(errors.Is(err, services.ErrInvalidPayload), ShouldBeTrue)
		})
	})
}
