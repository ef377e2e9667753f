package cli

func regCommands() {
	//Identities
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(forgetCmd)

	//Signing
	rootCmd.AddCommand(pubkeyCmd)
	rootCmd.AddCommand(signCmd)
}
