// Package definition builds a menu registry from a YAML or JSON document.
//
// Callbacks are referenced by name and resolved against Functions while loading, so a
// document that names an unknown function fails before any user reaches it.
// Marshal writes a parsed Definition back in the same format.
//
// Template cases are matched by their printed form: case: 1 in a document matches a
// callback returning 1, int64(1) or "1". Two cases that print the same are rejected.
//
//	default_state: main
//	menus:
//	  main:
//	    type: Menu
//	    content: {type: Content, text: "Main menu"}
//	    aliases: [start]
//	    items:
//	      - type: Item
//	        name: settings
//	        content: {type: TextItemContent, text: Settings, color: primary}
//	        action: {type: SubmenuAction, menu_name: settings}
package definition
