package cmd

import "visor/internal/templater"

var (
	configPath string

	email    string
	password string
	remember bool

	limit          int
	chapterNumbers string

	covers bool
	watch  bool

	output string
	naming string
)

func initRootFlags() {
	rootCmd.PersistentFlags().StringVarP(
		&configPath,
		"config",
		"c",
		"",
		"specifies the path to your config file",
	)
}

func initLoginFlags() {
	loginCmd.Flags().StringVarP(
		&email,
		"email",
		"e",
		"",
		"specifies the email of your account. default: email from the config",
	)
	loginCmd.Flags().StringVarP(
		&password,
		"password",
		"p",
		"",
		"specifies the password of your account. default: password from the config",
	)
	loginCmd.Flags().BoolVarP(
		&remember,
		"remember",
		"r",
		false,
		"ask the site to keep the session alive",
	)
}

func initBooksFlags() {
	booksCmd.Flags().IntVarP(
		&limit,
		"limit",
		"n",
		0,
		"stop after this many books, 0 lists all of them",
	)
}

func initChaptersFlags() {
	chaptersCmd.Flags().StringVarP(
		&chapterNumbers,
		"chapters",
		"C",
		"",
		"specifies the chapter numbers you want to show, e.g. 1-5,7",
	)
}

func initSyncFlags() {
	syncCmd.Flags().BoolVar(
		&covers,
		"covers",
		false,
		"download the cover of every synced book",
	)
	syncCmd.Flags().BoolVarP(
		&watch,
		"watch",
		"w",
		false,
		"keep syncing every syncInterval minutes until stopped",
	)
}

func initExportFlags() {
	exportCmd.Flags().StringVarP(
		&output,
		"output",
		"o",
		"library.pdf",
		"specifies the path of the pdf to write",
	)
	exportCmd.Flags().StringVarP(
		&naming,
		"naming",
		"n",
		templater.DefaultNaming,
		"specifies the naming template for catalog entries, e.g. {book:<.>} Ch. {latest:3}",
	)
}
