package command

// Usage lists the command grammar, one line per command, in the order it is
// shown by help.
func Usage() []string {
	return []string{
		"addi a<amount> /c<category> [/d<yyyy-mm-dd>] [/e<description>]",
		"adde a<amount> /c<category> [/d<yyyy-mm-dd>] [/e<description>]",
		"addcati <category name>",
		"addcate <category name>",
		"list [expense|income] [month <yyyy-mm>]",
		"listcat [expense|income]",
		"delete <index>",
		"deletecat <index>",
		"editcat <old name>/n<new name>",
		"report <yyyy-mm>",
		"clear",
		"help",
		"exit",
	}
}
